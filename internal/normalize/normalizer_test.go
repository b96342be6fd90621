package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"scorecard/internal/model"
	"scorecard/internal/parser"
)

func resolve(header ...string) parser.ColumnMap {
	return parser.NewColumnResolver(nil).Resolve(header, parser.KindCSV)
}

func TestNormalize_TampaRow(t *testing.T) {
	t.Parallel()

	cols := resolve("workroom", "store", "labor po $", "vendor debit")
	rec, ok := NewNormalizer(nil).Normalize([]parser.Cell{"Tampa", "101", "500", "50"}, cols, 1)
	if !ok {
		t.Fatalf("row skipped")
	}
	if rec.Name != "Tampa" || rec.Store != "101" {
		t.Fatalf("identity=%q/%q, want Tampa/101", rec.Name, rec.Store)
	}
	if rec.LaborPO != 500 || rec.VendorDebit != 50 || rec.Sales != 0 {
		t.Fatalf("money=%v/%v/%v, want 0/500/50", rec.Sales, rec.LaborPO, rec.VendorDebit)
	}
	if rec.ID == "" {
		t.Fatalf("missing id")
	}
}

func TestNormalize_NullVersusZero(t *testing.T) {
	t.Parallel()

	cols := resolve("workroom", "cycle time", "reschedule rate", "ltr score")
	rec, ok := NewNormalizer(nil).Normalize([]parser.Cell{"Tampa", "0", "", "n/a"}, cols, 1)
	if !ok {
		t.Fatalf("row skipped")
	}
	if rec.CycleTime == nil || *rec.CycleTime != 0 {
		t.Fatalf("CycleTime=%v, want measured zero", rec.CycleTime)
	}
	if rec.RescheduleRate != nil {
		t.Fatalf("RescheduleRate=%v, want nil", *rec.RescheduleRate)
	}
	if rec.LTRScore != nil {
		t.Fatalf("LTRScore=%v, want nil for unparseable cell", *rec.LTRScore)
	}
}

func TestNormalize_SkipsBlankRow(t *testing.T) {
	t.Parallel()

	cols := resolve("workroom", "store")
	if _, ok := NewNormalizer(nil).Normalize([]parser.Cell{"", " "}, cols, 3); ok {
		t.Fatalf("blank row not skipped")
	}
}

func TestNormalize_NameResolution(t *testing.T) {
	t.Parallel()

	lookup := DefaultLookup()
	lookup.Stores["204"] = "Destin"
	n := NewNormalizer(lookup)
	cols := resolve("workroom", "store #", "sales")

	cases := []struct {
		row       []parser.Cell
		wantName  string
		wantStore string
	}{
		{[]parser.Cell{"Location #", "#204", "10"}, "Destin", "204"},
		{[]parser.Cell{"Wrong Name", "204.0", "10"}, "Destin", "204"},
		{[]parser.Cell{"", "999", "10"}, "Record 7", "999"},
		{[]parser.Cell{"Panama Cit", "", "10"}, "Panama City", ""},
	}
	for _, tc := range cases {
		rec, ok := n.Normalize(tc.row, cols, 7)
		if !ok {
			t.Fatalf("row %v skipped", tc.row)
		}
		if rec.Name != tc.wantName || rec.Store != tc.wantStore {
			t.Fatalf("row %v => %q/%q, want %q/%q", tc.row, rec.Name, rec.Store, tc.wantName, tc.wantStore)
		}
		if !rec.HasValidName() {
			t.Fatalf("invalid name %q", rec.Name)
		}
	}
}

func TestNormalize_LocationFallsBackForStore(t *testing.T) {
	t.Parallel()

	cols := resolve("workroom", "location #", "sales")
	rec, _ := NewNormalizer(nil).Normalize([]parser.Cell{"Tampa", 101.0, "$1,250.50"}, cols, 1)
	if rec.Store != "101" {
		t.Fatalf("Store=%q, want 101", rec.Store)
	}
	if rec.Sales != 1250.5 {
		t.Fatalf("Sales=%v, want 1250.5", rec.Sales)
	}
}

func TestNormalize_SurveyFields(t *testing.T) {
	t.Parallel()

	cols := resolve("store", "workroom", "survey date", "ltr score", "craftsmanship", "survey comment")
	rec, _ := NewNormalizer(nil).Normalize([]parser.Cell{"101", "Tampa", "3/4/2025", "9.5", "8", "Great, clean"}, cols, 1)

	if rec.SurveyDate == nil || *rec.SurveyDate != "2025-03-04" {
		t.Fatalf("SurveyDate=%v, want 2025-03-04", rec.SurveyDate)
	}
	if rec.LTRScore == nil || *rec.LTRScore != 9.5 {
		t.Fatalf("LTRScore=%v, want 9.5", rec.LTRScore)
	}
	if rec.SurveyComment == nil || *rec.SurveyComment != "Great, clean" {
		t.Fatalf("SurveyComment=%v", rec.SurveyComment)
	}
	if !rec.HasSurveyData() || rec.HasVisualData() {
		t.Fatalf("survey=%v visual=%v, want true/false", rec.HasSurveyData(), rec.HasVisualData())
	}
}

func TestNormalize_ExcelSerialDate(t *testing.T) {
	t.Parallel()

	got := normalizeDate("45658")
	if got == nil || *got != "2025-01-01" {
		t.Fatalf("normalizeDate(45658)=%v, want 2025-01-01", got)
	}
	got = normalizeDate("sometime in march")
	if got == nil || *got != "sometime in march" {
		t.Fatalf("unknown layout should keep text, got %v", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	cols := resolve("workroom", "store", "sales", "labor po", "cycle time")
	row := []parser.Cell{"Tampa", "101", "1000", "150", "12"}
	n := NewNormalizer(nil)

	a, _ := n.Normalize(row, cols, 1)
	b, _ := n.Normalize(row, cols, 1)
	if a.ID == b.ID {
		t.Fatalf("ids should differ")
	}
	a.ID, b.ID = "", ""
	if a.Name != b.Name || a.Store != b.Store || a.Sales != b.Sales || a.LaborPO != b.LaborPO || *a.CycleTime != *b.CycleTime {
		t.Fatalf("records differ: %+v vs %+v", a, b)
	}
}

func TestNormalizeRecord_JSON(t *testing.T) {
	t.Parallel()

	in := model.WorkroomRecord{Name: "location", Store: "#55", Sales: 10}
	out := NewNormalizer(nil).NormalizeRecord(in, 4)
	if out.ID == "" {
		t.Fatalf("missing id")
	}
	if out.Name != "Record 4" || out.Store != "55" {
		t.Fatalf("identity=%q/%q, want Record 4/55", out.Name, out.Store)
	}
	if in.Store != "#55" {
		t.Fatalf("input mutated: %q", in.Store)
	}
}

func TestLoadLookup(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lookup.toml")
	content := `
[stores]
"#301" = "Pensacola"

[name_fixups]
"Ft Myers" = "Fort Myers"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lookup: %v", err)
	}

	lookup, err := LoadLookup(path)
	if err != nil {
		t.Fatalf("LoadLookup: %v", err)
	}
	if name, ok := lookup.WorkroomForStore("301"); !ok || name != "Pensacola" {
		t.Fatalf("store 301=%q/%v, want Pensacola", name, ok)
	}
	if got := lookup.FixName("Ft Myers"); got != "Fort Myers" {
		t.Fatalf("FixName=%q", got)
	}
	if got := lookup.FixName("Panama Cit"); got != "Panama City" {
		t.Fatalf("built-in fixup lost: %q", got)
	}
}
