// Package mapper infers and maintains the association between schema fields
// and source file columns, and validates rows against it.
package mapper

import (
	"strings"

	"github.com/buslane/buslane/internal/domain"
)

// Normalize lowercases a header or label and strips everything that is not
// a letter or digit, so "Student Name", "student_name" and "STUDENT-NAME"
// all compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AutoMap proposes a header for every schema field. Matching is deliberately
// substring-based rather than edit-distance based: a header matches a field
// when its normalized form equals, contains, or is contained by the field's
// normalized label or key. The first matching header in file-column order
// wins; unmatched fields stay unmapped. Fields the user has already touched
// are left alone.
func AutoMap(headers []string, s *domain.SchemaDefinition) *domain.ColumnMapping {
	m := domain.NewColumnMapping()
	AutoMapInto(m, headers, s)
	return m
}

// AutoMapInto runs the auto-map pass against an existing mapping, skipping
// manually assigned or manually unset fields.
func AutoMapInto(m *domain.ColumnMapping, headers []string, s *domain.SchemaDefinition) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	for _, f := range s.Fields {
		label := Normalize(f.Label)
		key := Normalize(f.Key)
		for i, h := range normalized {
			if h == "" {
				continue
			}
			if matches(h, label) || matches(h, key) {
				m.AutoAssign(f.Key, headers[i])
				break
			}
		}
	}
}

func matches(header, field string) bool {
	if field == "" {
		return false
	}
	return header == field ||
		strings.Contains(header, field) ||
		strings.Contains(field, header)
}
