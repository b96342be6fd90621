package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"scorecard/internal/history"
	"scorecard/internal/score"
)

// 工作表名称
const (
	SheetScorecard = "Scorecard"
	SheetRiskFlags = "Risk Flags"
	SheetHistory   = "History"
)

// ContentType xlsx 的 MIME 类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// scoreColumns 分项列顺序与 WPI 权重一致
var scoreColumns = func() []score.Component {
	out := make([]score.Component, 0, len(score.Weights))
	for _, w := range score.Weights {
		out = append(out, w.Component)
	}
	return out
}()

// ExportDashboard 导出当前数据集的排名与风险项
func ExportDashboard(results []score.Result, flags []score.RiskFlag) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetScorecard); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillScorecardSheet(f, results); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetRiskFlags); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create sheet %s: %w", SheetRiskFlags, err)
	}
	if err := fillRiskSheet(f, flags); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// ExportHistory 导出历史视图；周视图的金额列为平均值，其余周期为合计
func ExportHistory(summary history.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetHistory); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Period", string(summary.Period), "Snapshots", summary.SnapshotCount}
	if err := setRow(f, SheetHistory, 1, header); err != nil {
		_ = f.Close()
		return nil, err
	}

	cols := []any{"Rank", "Workroom", "Store", "Sales", "Labor PO", "Vendor Debit", "Total Sales", "Total Labor PO", "Total Vendor Debit", "Records"}
	for _, c := range scoreColumns {
		cols = append(cols, string(c))
	}
	cols = append(cols, "WPI")
	if err := setRow(f, SheetHistory, 3, cols); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, r := range summary.Workrooms {
		row := []any{r.Rank, r.Name, r.Store, r.Sales, r.LaborPO, r.VendorDebit, r.TotalSales, r.TotalLaborPO, r.TotalVendorDebit, r.Records}
		for _, c := range scoreColumns {
			row = append(row, r.Scores[c])
		}
		row = append(row, r.WPI)
		if err := setRow(f, SheetHistory, i+4, row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func fillScorecardSheet(f *excelize.File, results []score.Result) error {
	header := []any{"Rank", "Workroom", "Store", "Sales", "Labor PO", "Vendor Debit", "LTR %", "Vendor Debit %", "Records"}
	for _, c := range scoreColumns {
		header = append(header, string(c))
	}
	header = append(header, "WPI")
	if err := setRow(f, SheetScorecard, 1, header); err != nil {
		return err
	}

	for i, r := range results {
		row := []any{r.Rank, r.Name, r.Store, r.Sales, r.LaborPO, r.VendorDebit, optional(r.LTRPercent), optional(r.VendorDebitRatio), r.Records}
		for _, c := range scoreColumns {
			row = append(row, r.Scores[c])
		}
		row = append(row, r.WPI)
		if err := setRow(f, SheetScorecard, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetScorecard, "B", "B", 24)
}

func fillRiskSheet(f *excelize.File, flags []score.RiskFlag) error {
	if err := setRow(f, SheetRiskFlags, 1, []any{"Workroom", "Component", "Score", "Threshold"}); err != nil {
		return err
	}
	for i, fl := range flags {
		if err := setRow(f, SheetRiskFlags, i+2, []any{fl.Workroom, string(fl.Component), fl.Score, fl.Threshold}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// optional 空指针写成空单元格
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
