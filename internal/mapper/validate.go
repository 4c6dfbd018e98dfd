package mapper

import (
	"strings"

	"github.com/buslane/buslane/internal/domain"
)

// DefaultPreviewRows is how many mapped rows Validate renders for display.
const DefaultPreviewRows = 5

// Covered reports whether a field has a usable value in a row: a header is
// assigned and the cell under it is non-empty after trimming.
func Covered(row domain.RawRow, m *domain.ColumnMapping, f *domain.FieldSpec) bool {
	header, ok := m.Header(f.Key)
	if !ok {
		return false
	}
	return strings.TrimSpace(row[header]) != ""
}

// RowValid reports whether every required field of the schema is covered for
// the row.
func RowValid(row domain.RawRow, m *domain.ColumnMapping, s *domain.SchemaDefinition) bool {
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Required && !Covered(row, m, f) {
			return false
		}
	}
	return true
}

// Validate derives the validation state for the current document and
// mapping. MissingRequiredFields comes from the mapping alone and gates
// loading outright, independent of how many rows would actually fail. The
// preview applies the mapping to the first few rows as raw text; coercion is
// a load-time concern.
func Validate(doc *domain.SourceDocument, m *domain.ColumnMapping, s *domain.SchemaDefinition, previewRows int) *domain.ValidationState {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	state := &domain.ValidationState{}

	for _, f := range s.RequiredFields() {
		if _, ok := m.Header(f.Key); !ok {
			state.MissingRequiredFields = append(state.MissingRequiredFields, f.Label)
		}
	}

	for _, row := range doc.Rows {
		if !RowValid(row, m, s) {
			state.InvalidRowCount++
		}
	}

	n := previewRows
	if n > len(doc.Rows) {
		n = len(doc.Rows)
	}
	for _, row := range doc.Rows[:n] {
		mapped := make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			if header, ok := m.Header(f.Key); ok {
				mapped[f.Key] = row[header]
			}
		}
		state.Preview = append(state.Preview, mapped)
	}

	return state
}
