// Package tabular turns uploaded spreadsheet-like files into header lists
// and ordered row maps, independent of any target schema.
package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buslane/buslane/internal/domain"
	"github.com/xuri/excelize/v2"
)

// MaxFileSize is the upload ceiling enforced before any parsing happens.
const MaxFileSize = 10 << 20 // 10 MiB

// ErrFileTooLarge is returned when the upload exceeds MaxFileSize.
var ErrFileTooLarge = fmt.Errorf("file exceeds the %d MiB limit", MaxFileSize>>20)

// ErrUnsupportedFormat is returned for file extensions the parser does not
// understand.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError is the fatal parse failure: the file could not be decoded and
// no headers or rows were produced. The session must not proceed to mapping.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes an uploaded file into a SourceDocument. The extension picks
// the format: .csv and .tsv are parsed as delimited text, .xlsx and .xls as
// spreadsheet binaries (first sheet only). Header and row order are
// preserved; no data row is dropped at this stage.
func Parse(fileName string, data []byte) (*domain.SourceDocument, error) {
	if len(data) > MaxFileSize {
		return nil, &ParseError{FileName: fileName, Err: ErrFileTooLarge}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	var (
		headers []string
		rows    []domain.RawRow
		err     error
	)
	switch ext {
	case ".csv":
		headers, rows, err = parseDelimited(data, ',')
	case ".tsv":
		headers, rows, err = parseDelimited(data, '\t')
	case ".xlsx", ".xls":
		headers, rows, err = parseWorkbook(data)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &ParseError{FileName: fileName, Err: err}
	}

	return &domain.SourceDocument{
		FileName: fileName,
		Headers:  headers,
		Rows:     rows,
	}, nil
}

// parseDelimited splits the file into lines and the lines into cells by
// position. Rows shorter than the header line are padded with empty strings,
// matching how spreadsheet exports drop trailing empty cells. Empty lines
// are skipped. Values are aligned to headers by index, never by name.
func parseDelimited(data []byte, delim rune) ([]string, []domain.RawRow, error) {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil, errors.New("missing header row")
	}

	rawHeaders := strings.Split(lines[0], string(delim))
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = stripOuterQuotes(strings.TrimSpace(h))
	}

	var rows []domain.RawRow
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		values := strings.Split(line, string(delim))
		// Duplicate headers collapse last-write-wins here; the registry
		// schemas never produce them, so degenerate input is accepted as is.
		row := make(domain.RawRow, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// parseWorkbook decodes the first sheet of an Excel workbook. The first row
// supplies the headers; every later row becomes a RawRow with all cells
// already stringified by the reader and missing trailing cells defaulting to
// empty string.
func parseWorkbook(data []byte) ([]string, []domain.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil, errors.New("missing header row")
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []domain.RawRow
	for _, line := range cells[1:] {
		row := make(domain.RawRow, len(headers))
		for i, h := range headers {
			if i < len(line) {
				row[h] = line[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// stripOuterQuotes removes one matching pair of surrounding double or single
// quotes, as emitted by some spreadsheet CSV exporters around header names.
func stripOuterQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
