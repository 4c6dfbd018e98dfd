package tabular

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Student Name,Grade,School\nAva Reed,3,Lincoln Elementary\nNoah Cole,5,Jefferson\n")

	doc, err := Parse("students.csv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantHeaders := []string{"Student Name", "Grade", "School"}
	if len(doc.Headers) != len(wantHeaders) {
		t.Fatalf("got %d headers, want %d", len(doc.Headers), len(wantHeaders))
	}
	for i, h := range wantHeaders {
		if doc.Headers[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, doc.Headers[i], h)
		}
	}

	if len(doc.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(doc.Rows))
	}
	if doc.Rows[0]["Student Name"] != "Ava Reed" {
		t.Errorf("row 0 name = %q, want %q", doc.Rows[0]["Student Name"], "Ava Reed")
	}
	if doc.Rows[1]["School"] != "Jefferson" {
		t.Errorf("row 1 school = %q, want %q", doc.Rows[1]["School"], "Jefferson")
	}
}

func TestParseTSV(t *testing.T) {
	data := []byte("Route Number\tRoute Name\nR-12\tNorth Loop\n")

	doc, err := Parse("routes.tsv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Rows[0]["Route Number"] != "R-12" {
		t.Errorf("route number = %q, want %q", doc.Rows[0]["Route Number"], "R-12")
	}
}

func TestParseCRLFAndQuotedHeaders(t *testing.T) {
	data := []byte("\"Student Name\", Grade \r\nAva,3\r\n")

	doc, err := Parse("s.csv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Headers[0] != "Student Name" {
		t.Errorf("header[0] = %q, want quotes stripped", doc.Headers[0])
	}
	if doc.Headers[1] != "Grade" {
		t.Errorf("header[1] = %q, want trimmed %q", doc.Headers[1], "Grade")
	}
	if doc.Rows[0]["Grade"] != "3" {
		t.Errorf("grade = %q, want %q", doc.Rows[0]["Grade"], "3")
	}
}

func TestParseShortRowsPadWithEmpty(t *testing.T) {
	data := []byte("a,b,c\n1,2\n")

	doc, err := Parse("f.csv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	row := doc.Rows[0]
	if row["a"] != "1" || row["b"] != "2" {
		t.Errorf("unexpected row values: %v", row)
	}
	if v, ok := row["c"]; !ok || v != "" {
		t.Errorf("missing trailing cell should map to empty string, got %q (present=%v)", v, ok)
	}
}

func TestParseSkipsEmptyLines(t *testing.T) {
	data := []byte("a,b\n1,2\n\n3,4\n\n")

	doc, err := Parse("f.csv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty lines skipped)", len(doc.Rows))
	}
}

func TestParsePreservesRowOrder(t *testing.T) {
	data := []byte("n\n3\n1\n2\n")

	doc, err := Parse("f.csv", data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []string{"3", "1", "2"}
	for i, w := range want {
		if doc.Rows[i]["n"] != w {
			t.Errorf("row %d = %q, want %q", i, doc.Rows[i]["n"], w)
		}
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
	}{
		{name: "unsupported extension", fileName: "notes.txt", data: []byte("a,b\n1,2\n")},
		{name: "corrupt workbook", fileName: "broken.xlsx", data: []byte("definitely not a zip archive")},
		{name: "empty delimited file", fileName: "empty.csv", data: []byte("")},
		{name: "oversized file", fileName: "big.csv", data: bytes.Repeat([]byte("x"), MaxFileSize+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(tc.fileName, tc.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if doc != nil {
				t.Error("no document should be produced on parse failure")
			}
		})
	}
}

func TestParseOversizedReportsLimit(t *testing.T) {
	_, err := Parse("big.csv", bytes.Repeat([]byte("x"), MaxFileSize+1))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}
