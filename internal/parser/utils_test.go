package parser

import "testing"

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"\ufeffWorkroom":        "workroom",
		"  Labor  PO $ ":        "labor po $",
		"Vendor\nDebit":         "vendor debit",
		"Jobs\tWork Cycle Time": "jobs work cycle time",
		"":                      "",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Fatalf("NormalizeHeader(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestCellString(t *testing.T) {
	t.Parallel()

	if got := CellString(" 101 "); got != "101" {
		t.Fatalf("string cell=%q, want %q", got, "101")
	}
	if got := CellString(101.0); got != "101" {
		t.Fatalf("float cell=%q, want %q", got, "101")
	}
	if got := CellString(12.5); got != "12.5" {
		t.Fatalf("float cell=%q, want %q", got, "12.5")
	}
	if got := CellString(nil); got != "" {
		t.Fatalf("nil cell=%q, want empty", got)
	}
}

func TestCellAt_OutOfRange(t *testing.T) {
	t.Parallel()

	row := []Cell{"a", "b"}
	if got := CellAt(row, -1); got != nil {
		t.Fatalf("CellAt(-1)=%v, want nil", got)
	}
	if got := CellAt(row, 5); got != nil {
		t.Fatalf("CellAt(5)=%v, want nil", got)
	}
	if got := CellAt(row, 1); got != "b" {
		t.Fatalf("CellAt(1)=%v, want b", got)
	}
}

func TestIsBlankRow(t *testing.T) {
	t.Parallel()

	if !IsBlankRow([]Cell{"", " ", nil}) {
		t.Fatalf("expected blank row")
	}
	if IsBlankRow([]Cell{"", "x"}) {
		t.Fatalf("expected non-blank row")
	}
}
