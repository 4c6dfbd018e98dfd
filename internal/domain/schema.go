package domain

// FieldKind classifies how a field's raw cell text is coerced at load time.
// Values include FieldText, FieldInteger, and FieldFloat.
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldInteger FieldKind = "integer"
	FieldFloat   FieldKind = "float"
)

// FieldSpec declares one importable field of a schema.
type FieldSpec struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Kind     FieldKind `json:"kind"`
}

// LookupSpec declares a foreign-key field that is resolved against another
// sink at load time instead of being written as a raw column. The raw cell
// value under FieldKey is matched against MatchColumn in SinkName, and the
// matched row's ID is written under TargetColumn.
type LookupSpec struct {
	FieldKey     string `json:"field_key"`
	SinkName     string `json:"sink_name"`
	MatchColumn  string `json:"match_column"`
	TargetColumn string `json:"target_column"`
}

// SchemaDefinition describes one importable record type: its ordered field
// list, the sink table it loads into, and an optional foreign lookup.
// Definitions are built once at startup and never mutated.
type SchemaDefinition struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	SinkName string      `json:"sink_name"`
	Fields   []FieldSpec `json:"fields"`
	Lookup   *LookupSpec `json:"lookup,omitempty"`
}

// Field returns the field with the given key, or nil if the schema does not
// declare it.
func (s *SchemaDefinition) Field(key string) *FieldSpec {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}

// RequiredFields returns the subset of fields with Required set, in declared
// order.
func (s *SchemaDefinition) RequiredFields() []FieldSpec {
	var req []FieldSpec
	for _, f := range s.Fields {
		if f.Required {
			req = append(req, f)
		}
	}
	return req
}
