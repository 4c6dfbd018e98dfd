package domain

// RawRow is one parsed source row: header string to raw cell text. Cells may
// be empty; keys are always drawn from the document's header list.
type RawRow map[string]string

// SourceDocument is the parsed form of one uploaded file. Header order and
// row order are preserved exactly as encountered in the source. A document
// belongs to a single import session and is never shared.
type SourceDocument struct {
	FileName string   `json:"file_name"`
	Headers  []string `json:"headers"`
	Rows     []RawRow `json:"rows"`
}

// RowCount returns the number of data rows in the document.
func (d *SourceDocument) RowCount() int {
	return len(d.Rows)
}
