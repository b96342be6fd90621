package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scorecard/internal/api"
	"scorecard/internal/exporter"
	"scorecard/internal/importer"
	"scorecard/internal/score"
	"scorecard/internal/util"
)

type ingestOptions struct {
	survey   string
	asJSON   bool
	save     bool
	xlsx     string
	callerID string
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Parse, normalize and score a workroom file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.survey, "survey", "", "survey file to merge with the visual file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the import report as JSON")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the ranking to this .xlsx file")
	cmd.Flags().BoolVar(&opts.save, "save", false, "replace the stored dashboard with the imported records")
	cmd.Flags().StringVar(&opts.callerID, "caller", api.DefaultCaller, "caller partition used with --save")
	return cmd
}

func runIngest(cmd *cobra.Command, root *rootOptions, opts ingestOptions, file string) error {
	cfg, _ := loadConfig(root)
	logger := newLogger(cfg)

	paths := []string{file}
	if opts.survey != "" {
		paths = append(paths, opts.survey)
	}
	uploads := make([]importer.Upload, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		uploads = append(uploads, importer.Upload{Filename: filepath.Base(p), Content: content})
	}

	importOpts := importer.ImportOptions{
		CallerID:   opts.callerID,
		Files:      uploads,
		Thresholds: thresholds(cfg),
	}

	ctx := cmd.Context()
	var report *importer.ImportReport
	if opts.save {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err = a.coordinator.Run(ctx, importOpts)
		if err != nil {
			return err
		}
		view := a.dashboard.Replace(ctx, opts.callerID, report.Dashboard())
		for _, w := range view.Warnings {
			logger.Warn("save_warning", slog.String("warning", w))
		}
	} else {
		coordinator, err := newCoordinator(cfg, logger)
		if err != nil {
			return err
		}
		report, err = coordinator.Run(ctx, importOpts)
		if err != nil {
			return err
		}
	}

	if opts.xlsx != "" {
		if err := saveWorkbook(opts.xlsx, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeReport(out, report)
}

func saveWorkbook(path string, report *importer.ImportReport) error {
	f, err := exporter.ExportDashboard(report.Results, report.RiskFlags)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// writeReport 以表格输出排名与风险项
func writeReport(out io.Writer, report *importer.ImportReport) error {
	for _, f := range report.Files {
		fmt.Fprintf(out, "%s (%s, %s): %d imported, %d skipped\n", f.Filename, f.Kind, f.Batch, f.ImportedRows, f.SkippedRows)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tWORKROOM\tSALES\tLTR%\tLTR\tVENDOR DEBIT\tWPI")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank,
			r.Name,
			util.FormatCurrency(r.Sales),
			util.FormatPercent(r.LTRPercent),
			util.FormatScore(r.Scores[score.ComponentLTR]),
			util.FormatScore(r.Scores[score.ComponentVendorDebit]),
			util.FormatScore(r.WPI),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(report.RiskFlags) > 0 {
		fmt.Fprintf(out, "\n%d risk flag(s):\n", len(report.RiskFlags))
		for _, f := range report.RiskFlags {
			fmt.Fprintf(out, "  %s %s %s < %s\n", f.Workroom, f.Component, util.FormatScore(f.Score), util.FormatScore(f.Threshold))
		}
	}
	return nil
}
