package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	cases := map[string]FileKind{
		"visual.xlsx":  KindXLSX,
		"LEGACY.XLS":   KindXLS,
		"survey.csv":   KindCSV,
		"backup.json":  KindJSON,
		" spaced.csv ": KindCSV,
	}
	for name, want := range cases {
		got, err := DetectKind(name)
		if err != nil {
			t.Fatalf("DetectKind(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("DetectKind(%q)=%v, want %v", name, got, want)
		}
	}
}

func TestFileKind_IsTabular(t *testing.T) {
	t.Parallel()

	for kind, want := range map[FileKind]bool{KindXLSX: true, KindXLS: true, KindCSV: true, KindJSON: false} {
		if got := kind.IsTabular(); got != want {
			t.Fatalf("%s.IsTabular()=%v, want %v", kind, got, want)
		}
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := NewFileParser(CSVQuoted).Parse("report.pdf", []byte("x"))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err=%v, want *FormatError", err)
	}
	if fe.Ext != ".pdf" {
		t.Fatalf("Ext=%q, want .pdf", fe.Ext)
	}
}

func TestParse_XLSX(t *testing.T) {
	t.Parallel()

	content := buildXLSX(t, [][]any{
		{"Workroom", "Store", "Labor PO $", "Vendor Debit"},
		{"Tampa", "101", 500, 50},
		{"Orlando", "102", 800, 0},
	})

	parsed, err := NewFileParser(CSVQuoted).Parse("visual.xlsx", content)
	if err != nil {
		t.Fatalf("parse xlsx: %v", err)
	}
	if parsed.Kind != KindXLSX {
		t.Fatalf("Kind=%v, want xlsx", parsed.Kind)
	}
	if got := parsed.Header[2]; got != "labor po $" {
		t.Fatalf("header[2]=%q, want %q", got, "labor po $")
	}
	if parsed.RowCount() != 2 {
		t.Fatalf("RowCount=%d, want 2", parsed.RowCount())
	}
	if got := CellString(parsed.Rows[0][0]); got != "Tampa" {
		t.Fatalf("row0 name=%q, want Tampa", got)
	}
	if got := CellString(parsed.Rows[0][2]); got != "500" {
		t.Fatalf("row0 labor=%q, want 500", got)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	_, err := NewFileParser(CSVQuoted).Parse("empty.csv", []byte("workroom,store\n"))
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *StructureError", err)
	}
}

func TestParse_BlankHeader(t *testing.T) {
	t.Parallel()

	_, err := NewFileParser(CSVQuoted).Parse("blank.csv", []byte(" , \nTampa,101\n"))
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *StructureError", err)
	}
}

func TestParse_CSVCommaInQuotedField(t *testing.T) {
	t.Parallel()

	content := []byte("\ufeffWorkroom,Store,Survey Comment,LTR Score\r\n" +
		"Tampa,101,\"Great crew, very clean\",9.5\r\n")

	quoted, err := NewFileParser(CSVQuoted).Parse("survey.csv", content)
	if err != nil {
		t.Fatalf("parse quoted: %v", err)
	}
	if quoted.Header[0] != "workroom" {
		t.Fatalf("header[0]=%q, want workroom", quoted.Header[0])
	}
	row := quoted.Rows[0]
	if len(row) != 4 {
		t.Fatalf("quoted row has %d cells, want 4", len(row))
	}
	if got := CellString(row[2]); got != "Great crew, very clean" {
		t.Fatalf("comment=%q", got)
	}
	if got := CellString(row[3]); got != "9.5" {
		t.Fatalf("ltr=%q, want 9.5", got)
	}

	naive, err := NewFileParser(CSVNaive).Parse("survey.csv", content)
	if err != nil {
		t.Fatalf("parse naive: %v", err)
	}
	row = naive.Rows[0]
	if len(row) != 5 {
		t.Fatalf("naive row has %d cells, want 5", len(row))
	}
	if got := CellString(row[3]); got != "very clean\"" {
		t.Fatalf("naive shifted cell=%q", got)
	}
}

func TestParse_CSVSkipsBlankLines(t *testing.T) {
	t.Parallel()

	content := []byte("workroom,store\n\nTampa,101\n\n")
	for _, mode := range []CSVMode{CSVQuoted, CSVNaive} {
		parsed, err := NewFileParser(mode).Parse("v.csv", content)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if parsed.RowCount() != 1 {
			t.Fatalf("%s RowCount=%d, want 1", mode, parsed.RowCount())
		}
	}
}

func TestParse_JSONWorkrooms(t *testing.T) {
	t.Parallel()

	content := []byte(`{"workrooms":[{"id":"a","name":"Tampa","store":101,"sales":1000,"laborPO":150,"vendorDebit":0,"cycleTime":12}]}`)
	parsed, err := NewFileParser(CSVQuoted).Parse("backup.json", content)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if parsed.Batch != BatchVisual {
		t.Fatalf("Batch=%v, want visual", parsed.Batch)
	}
	if len(parsed.Records) != 1 {
		t.Fatalf("records=%d, want 1", len(parsed.Records))
	}
	r := parsed.Records[0]
	if r.Store != "101" {
		t.Fatalf("Store=%q, want 101", r.Store)
	}
	if r.CycleTime == nil || *r.CycleTime != 12 {
		t.Fatalf("CycleTime=%v, want 12", r.CycleTime)
	}
	if r.RescheduleRate != nil {
		t.Fatalf("RescheduleRate=%v, want nil", *r.RescheduleRate)
	}
}

func TestParse_JSONSurveys(t *testing.T) {
	t.Parallel()

	content := []byte(`{"surveys":[{"name":"Tampa","store":"101","ltrScore":9.5}]}`)
	parsed, err := NewFileParser(CSVQuoted).Parse("survey.json", content)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if parsed.Batch != BatchSurvey {
		t.Fatalf("Batch=%v, want survey", parsed.Batch)
	}
	if parsed.RowCount() != 1 {
		t.Fatalf("RowCount=%d, want 1", parsed.RowCount())
	}
}

func TestParse_JSONMissingArray(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"items":[]}`, `{"workrooms":{}}`, `not json`} {
		_, err := NewFileParser(CSVQuoted).Parse("x.json", []byte(body))
		var se *StructureError
		if !errors.As(err, &se) {
			t.Fatalf("%s: err=%v, want *StructureError", body, err)
		}
	}
}

func TestParse_JSONSkipsBadRecords(t *testing.T) {
	t.Parallel()

	content := []byte(`{
		"workrooms":[
			{"name":"Tampa","sales":1000},
			{"name":"Orlando","sales":"1,000"},
			{"name":"Naples","laborPO":20}
		],
		"surveys":{"broken":true}
	}`)
	parsed, err := NewFileParser(CSVQuoted).Parse("backup.json", content)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if parsed.Batch != BatchVisual {
		t.Fatalf("Batch=%v, want visual", parsed.Batch)
	}
	if len(parsed.Records) != 2 || parsed.Records[1].Name != "Naples" {
		t.Fatalf("records=%+v, want Tampa and Naples", parsed.Records)
	}
	if len(parsed.Invalid) != 1 || !strings.HasPrefix(parsed.Invalid[0], "record 2:") {
		t.Fatalf("invalid=%v, want record 2", parsed.Invalid)
	}
	if parsed.RowCount() != 3 {
		t.Fatalf("RowCount=%d, want 3", parsed.RowCount())
	}
}
