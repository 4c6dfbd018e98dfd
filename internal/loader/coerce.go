package loader

import (
	"strconv"
	"strings"

	"github.com/buslane/buslane/internal/domain"
)

// coerceValue converts raw cell text according to the field's kind. Numeric
// parse failures fall back to zero rather than failing the row; everything
// else passes through trimmed.
func coerceValue(raw string, kind domain.FieldKind) interface{} {
	trimmed := strings.TrimSpace(raw)
	switch kind {
	case domain.FieldInteger:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0
		}
		return n
	case domain.FieldFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return trimmed
	}
}

// buildRecord applies the mapping to one valid row and coerces every covered
// field. Fields with no mapped header or an empty cell are left out of the
// record entirely so the sink's defaults apply. Required fields are always
// present here because invalid rows never reach this function.
func buildRecord(row domain.RawRow, m *domain.ColumnMapping, s *domain.SchemaDefinition) domain.Record {
	record := make(domain.Record, len(s.Fields))
	for _, f := range s.Fields {
		header, ok := m.Header(f.Key)
		if !ok {
			continue
		}
		raw := row[header]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		record[f.Key] = coerceValue(raw, f.Kind)
	}
	return record
}
