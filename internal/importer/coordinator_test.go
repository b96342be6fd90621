package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"scorecard/internal/metrics"
	"scorecard/internal/normalize"
	"scorecard/internal/parser"
	"scorecard/internal/score"
	"scorecard/internal/store"
)

func newTestCoordinator(t *testing.T, opts ...Option) *Coordinator {
	t.Helper()

	lookup := normalize.DefaultLookup()
	lookup.Stores["204"] = "Destin"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCoordinator(parser.NewFileParser(parser.CSVQuoted), normalize.NewNormalizer(lookup), log, opts...)
}

func visualWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Workroom", "Store", "Total Sales", "Labor PO $", "Vendor Debit", "Cycle Time"},
		{"Tampa", 101, 1000, 150, 10, 12},
		{"Location #", 204, 2000, 900, 100, ""},
		{" ", " ", " ", " ", " ", " "},
		{"Tampa", 101, 500, 50, 0, 20},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

const surveyCSV = "Store #,Workroom,Survey Date,LTR Score,Craft,Survey Comment\n" +
	"101,Tampa,2025-03-04,9.5,9,\"Fast, tidy\"\n" +
	"305,Naples,2025-03-05,6,7,\n"

func TestRun_VisualAndSurvey(t *testing.T) {
	t.Parallel()

	reg := metrics.NewRegistry()
	c := newTestCoordinator(t, WithMetrics(reg))
	report, err := c.Run(context.Background(), ImportOptions{
		CallerID: "alice",
		Files: []Upload{
			{Filename: "survey.csv", Content: []byte(surveyCSV)},
			{Filename: "visual.xlsx", Content: visualWorkbook(t)},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.Files) != 2 || report.Files[0].Batch != parser.BatchSurvey || report.Files[1].Batch != parser.BatchVisual {
		t.Fatalf("files=%+v", report.Files)
	}
	if report.Files[1].SkippedRows != 1 || report.Files[1].ImportedRows != 3 {
		t.Fatalf("visual rows imported=%d skipped=%d, want 3/1", report.Files[1].ImportedRows, report.Files[1].SkippedRows)
	}

	// Tampa(合并重复行) / Destin(对照表) / Naples(仅问卷)
	if len(report.Records) != 3 {
		t.Fatalf("records=%d, want 3: %+v", len(report.Records), report.Records)
	}
	tampa := report.Records[0]
	if tampa.Name != "Tampa" || tampa.Sales != 1500 || tampa.LaborPO != 200 {
		t.Fatalf("tampa=%+v", tampa)
	}
	if tampa.LTRScore == nil || *tampa.LTRScore != 9.5 {
		t.Fatalf("tampa ltr=%v, want 9.5", tampa.LTRScore)
	}
	if report.Records[1].Name != "Destin" || report.Records[1].CycleTime != nil {
		t.Fatalf("destin=%+v", report.Records[1])
	}
	naples := report.Records[2]
	if naples.Name != "Naples" || naples.HasVisualData() {
		t.Fatalf("naples=%+v", naples)
	}
	if report.SurveyOnly != 1 || report.WithSurvey != 2 {
		t.Fatalf("surveyOnly=%d withSurvey=%d, want 1/2", report.SurveyOnly, report.WithSurvey)
	}

	if len(report.Results) != 3 || report.Results[0].Rank != 1 {
		t.Fatalf("results=%+v", report.Results)
	}
	for _, r := range report.Records {
		if !r.HasValidName() {
			t.Fatalf("invalid name %q", r.Name)
		}
	}

	var destinFlag bool
	for _, f := range report.RiskFlags {
		if f.Workroom == "Destin" && f.Component == score.ComponentLTR {
			destinFlag = true
		}
	}
	if !destinFlag {
		t.Fatalf("expected LTR risk flag for Destin, got %+v", report.RiskFlags)
	}
}

func TestRun_RejectsUnsupportedFile(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	_, err := c.Run(context.Background(), ImportOptions{Files: []Upload{{Filename: "notes.txt", Content: []byte("x")}}})
	var fe *parser.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err=%v, want *parser.FormatError", err)
	}

	_, err = c.Run(context.Background(), ImportOptions{})
	if err == nil {
		t.Fatalf("expected error without files")
	}
}

func TestImport_ProgressEvents(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ch := c.Import(context.Background(), ImportOptions{
		Files: []Upload{{Filename: "v.csv", Content: []byte("workroom,store,labor po $,vendor debit\nTampa,101,500,50\n")}},
	})

	var types []string
	var report *ImportReport
	for evt := range ch {
		types = append(types, evt.Type)
		if evt.Type == "error" {
			t.Fatalf("error event: %s", evt.Message)
		}
		if evt.Type == "done" {
			report, _ = evt.Data.(*ImportReport)
		}
	}
	if types[0] != "start" || types[len(types)-1] != "done" {
		t.Fatalf("events=%v", types)
	}
	if report == nil || len(report.Records) != 1 {
		t.Fatalf("report=%+v", report)
	}
	rec := report.Records[0]
	if rec.Name != "Tampa" || rec.Store != "101" || rec.LaborPO != 500 || rec.VendorDebit != 50 || rec.Sales != 0 {
		t.Fatalf("record=%+v", rec)
	}
}

func TestImport_StructureErrorEvent(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ch := c.Import(context.Background(), ImportOptions{Files: []Upload{{Filename: "empty.csv", Content: []byte("workroom\n")}}})

	var last ProgressEvent
	for evt := range ch {
		last = evt
	}
	if last.Type != "error" {
		t.Fatalf("last event=%s, want error", last.Type)
	}
}

func TestRun_WritesImportLogs(t *testing.T) {
	t.Parallel()

	st, err := store.New(filepath.Join(t.TempDir(), "scorecard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	c := newTestCoordinator(t, WithImportLogger(st))
	_, err = c.Run(context.Background(), ImportOptions{
		CallerID: "alice",
		Files:    []Upload{{Filename: "backup.json", Content: []byte(`{"workrooms":[{"name":"Tampa","store":"101","sales":10}]}`)}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	logs, err := st.ListImportLogs(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != StatusSuccess || logs[0].FileKind != "json" || logs[0].ImportedRows != 1 {
		t.Fatalf("logs=%+v", logs)
	}
}

func TestRun_JSONSkipsBadRecords(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	content := []byte(`{"workrooms":[{"name":"Tampa","sales":1000},{"name":"Orlando","sales":"1,000"}]}`)
	report, err := c.Run(context.Background(), ImportOptions{
		Files: []Upload{{Filename: "backup.json", Content: content}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	f := report.Files[0]
	if f.TotalRows != 2 || f.ImportedRows != 1 || f.SkippedRows != 1 || len(f.Errors) != 1 {
		t.Fatalf("file=%+v, want 2 total, 1 imported, 1 skipped with error", f)
	}
	if len(report.Records) != 1 || report.Records[0].Name != "Tampa" {
		t.Fatalf("records=%+v", report.Records)
	}
}
