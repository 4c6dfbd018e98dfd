package schema

import (
	"strings"

	"github.com/buslane/buslane/internal/domain"
)

// Template renders a delimited-text upload template for a schema: a header
// row with the field labels in declared order and one example data row of
// placeholder values. Parsing the output and auto-mapping it against the
// same schema maps every field.
func Template(s *domain.SchemaDefinition) string {
	headers := make([]string, len(s.Fields))
	example := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		headers[i] = f.Label
		example[i] = placeholder(f)
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	b.WriteString("\n")
	b.WriteString(strings.Join(example, ","))
	b.WriteString("\n")
	return b.String()
}

// TemplateFileName returns the suggested download name for a schema template.
func TemplateFileName(s *domain.SchemaDefinition) string {
	return s.ID + "_template.csv"
}

func placeholder(f domain.FieldSpec) string {
	switch f.Kind {
	case domain.FieldInteger:
		return "0"
	case domain.FieldFloat:
		return "0.0"
	default:
		return "Example " + f.Label
	}
}
