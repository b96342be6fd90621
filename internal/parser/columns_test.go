package parser

import "testing"

func TestResolve_VisualHeader(t *testing.T) {
	t.Parallel()

	header := []string{"workroom", "store", "labor po $", "vendor debit"}
	cols := NewColumnResolver(nil).Resolve(header, KindCSV)

	want := map[string]int{
		FieldWorkroom:    0,
		FieldStore:       1,
		FieldLaborPO:     2,
		FieldVendorDebit: 3,
		FieldSales:       NotFound,
		FieldLocation:    NotFound,
		FieldCycleTime:   NotFound,
	}
	for field, idx := range want {
		if got := cols.Index(field); got != idx {
			t.Fatalf("%s=%d, want %d", field, got, idx)
		}
	}
	if cols.IsSurvey() {
		t.Fatalf("visual header detected as survey")
	}
}

func TestResolve_CycleTimeFamily(t *testing.T) {
	t.Parallel()

	header := []string{
		"Workroom",
		"Details Cycle Time",
		"Jobs Work Cycle Time",
		"Work Order Cycle Time",
		"Reschedule Rate",
		"Jobs Completed",
	}
	cols := NewColumnResolver(nil).Resolve(NormalizeHeaders(stringsToCells(header)), KindXLSX)

	if got := cols.Index(FieldDetailsCycleTime); got != 1 {
		t.Fatalf("detailsCycleTime=%d, want 1", got)
	}
	if got := cols.Index(FieldJobsWorkCycleTime); got != 2 {
		t.Fatalf("jobsWorkCycleTime=%d, want 2", got)
	}
	if got := cols.Index(FieldCycleTime); got != 3 {
		t.Fatalf("cycleTime=%d, want 3", got)
	}
	if got := cols.Index(FieldRescheduleRate); got != 4 {
		t.Fatalf("rescheduleRate=%d, want 4", got)
	}
	if got := cols.Index(FieldCompleted); got != 5 {
		t.Fatalf("completed=%d, want 5", got)
	}
	if got := cols.Index(FieldScheduleScore); got != NotFound {
		t.Fatalf("scheduleScore=%d, want -1", got)
	}
}

func TestResolve_FixedPositionFallback(t *testing.T) {
	t.Parallel()

	header := make([]string, 43)
	for i := range header {
		header[i] = "col"
	}
	header[0] = "workroom"

	cols := NewColumnResolver(nil).Resolve(header, KindXLSX)
	want := map[string]int{
		FieldDetailsCycleTime:  18,
		FieldCompleted:         19,
		FieldJobsWorkCycleTime: 23,
		FieldCycleTime:         28,
		FieldRescheduleRate:    29,
		FieldGetItRight:        42,
		FieldLocation:          4,
		FieldStore:             NotFound,
	}
	for field, idx := range want {
		if got := cols.Index(field); got != idx {
			t.Fatalf("%s=%d, want %d", field, got, idx)
		}
	}

	csvCols := NewColumnResolver(nil).Resolve(header, KindCSV)
	if got := csvCols.Index(FieldStore); got != 4 {
		t.Fatalf("csv store=%d, want 4", got)
	}
}

func TestResolve_FallbackNeedsWideHeader(t *testing.T) {
	t.Parallel()

	header := make([]string, 29)
	cols := NewColumnResolver(nil).Resolve(header, KindXLSX)
	if got := cols.Index(FieldCycleTime); got != 28 {
		t.Fatalf("cycleTime=%d, want 28", got)
	}
	if got := cols.Index(FieldRescheduleRate); got != NotFound {
		t.Fatalf("rescheduleRate=%d, want -1 for 29 columns", got)
	}
}

func TestResolve_SurveyHeader(t *testing.T) {
	t.Parallel()

	header := []string{"store #", "workroom", "survey date", "ltr score", "craftsmanship", "professionalism", "survey comment", "labor category"}
	cols := NewColumnResolver(nil).Resolve(header, KindCSV)

	if !cols.IsSurvey() {
		t.Fatalf("survey header not detected")
	}
	if got := cols.Index(FieldStore); got != 0 {
		t.Fatalf("store=%d, want 0", got)
	}
	if got := cols.Index(FieldLTRScore); got != 3 {
		t.Fatalf("ltrScore=%d, want 3", got)
	}
	if got := cols.Index(FieldProfScore); got != 5 {
		t.Fatalf("profScore=%d, want 5", got)
	}
	if got := cols.Index(FieldLaborCategory); got != 7 {
		t.Fatalf("laborCategory=%d, want 7", got)
	}
}

func TestResolve_ExcludedColumns(t *testing.T) {
	t.Parallel()

	header := []string{"store name", "sales %", "total sales", "profit", "ltr %"}
	cols := NewColumnResolver(nil).Resolve(header, KindXLSX)

	if got := cols.Index(FieldStore); got != NotFound {
		t.Fatalf("store=%d, want -1", got)
	}
	if got := cols.Index(FieldSales); got != 2 {
		t.Fatalf("sales=%d, want 2", got)
	}
	if got := cols.Index(FieldProfScore); got != NotFound {
		t.Fatalf("profScore=%d, want -1", got)
	}
	if got := cols.Index(FieldLTRScore); got != NotFound {
		t.Fatalf("ltrScore=%d, want -1", got)
	}
}

func TestResolve_CustomRules(t *testing.T) {
	t.Parallel()

	rules := []ColumnRule{{Field: FieldSales, Contains: []string{"revenue"}, Fallback: NotFound}}
	cols := NewColumnResolver(rules).Resolve([]string{"name", "revenue"}, KindCSV)
	if got := cols.Index(FieldSales); got != 1 {
		t.Fatalf("sales=%d, want 1", got)
	}
	if cols.Has(FieldWorkroom) {
		t.Fatalf("unexpected workroom field with custom rules")
	}
}
