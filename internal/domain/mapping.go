package domain

// ColumnMapping associates schema field keys with source file headers. It
// distinguishes automatic assignments from manual ones so that a manual
// choice (including an explicit unset) is never clobbered by a later
// auto-map pass.
type ColumnMapping struct {
	assigned map[string]string
	manual   map[string]bool
}

// NewColumnMapping returns an empty mapping.
func NewColumnMapping() *ColumnMapping {
	return &ColumnMapping{
		assigned: make(map[string]string),
		manual:   make(map[string]bool),
	}
}

// Header returns the header mapped to the given field key, if any.
func (m *ColumnMapping) Header(fieldKey string) (string, bool) {
	h, ok := m.assigned[fieldKey]
	return h, ok
}

// Set records a manual assignment of a header to a field key.
func (m *ColumnMapping) Set(fieldKey, header string) {
	m.assigned[fieldKey] = header
	m.manual[fieldKey] = true
}

// Unset removes the assignment for a field key. The unset is itself manual:
// a later auto-map pass will not restore the previous value.
func (m *ColumnMapping) Unset(fieldKey string) {
	delete(m.assigned, fieldKey)
	m.manual[fieldKey] = true
}

// AutoAssign records an automatic assignment. It is a no-op for field keys
// the user has already touched.
func (m *ColumnMapping) AutoAssign(fieldKey, header string) {
	if m.manual[fieldKey] {
		return
	}
	m.assigned[fieldKey] = header
}

// Assignments returns a copy of the current field-key to header map.
func (m *ColumnMapping) Assignments() map[string]string {
	out := make(map[string]string, len(m.assigned))
	for k, v := range m.assigned {
		out[k] = v
	}
	return out
}

// ValidationState is derived from a document, a mapping, and a schema. It is
// recomputed whenever either the mapping or the document changes.
type ValidationState struct {
	// MissingRequiredFields lists the labels of required fields with no
	// mapped header at all. Non-empty means loading is blocked.
	MissingRequiredFields []string `json:"missing_required_fields"`

	// InvalidRowCount is the number of rows failing required-field coverage
	// under the current mapping.
	InvalidRowCount int `json:"invalid_row_count"`

	// Preview holds the first few rows with the mapping applied, keyed by
	// field key. Raw text passthrough, display only.
	Preview []map[string]string `json:"preview"`
}

// Ready reports whether the upfront gate passes: every required field has a
// header assigned.
func (v *ValidationState) Ready() bool {
	return len(v.MissingRequiredFields) == 0
}
