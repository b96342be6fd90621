package score

import (
	"sort"

	"scorecard/internal/model"
)

// Component WPI 分项
type Component string

const (
	ComponentLTR            Component = "ltr"
	ComponentDetailsCycle   Component = "detailsCycleTime"
	ComponentJobsCycle      Component = "jobsCycleTime"
	ComponentWorkOrderCycle Component = "workOrderCycleTime"
	ComponentReschedule     Component = "rescheduleRate"
	ComponentVendorDebit    Component = "vendorDebit"
	ComponentWPI            Component = "wpi"
)

// Weights 分项权重（合计 100）
var Weights = []struct {
	Component Component
	Weight    float64
}{
	{ComponentLTR, 50},
	{ComponentDetailsCycle, 5},
	{ComponentJobsCycle, 13},
	{ComponentWorkOrderCycle, 14},
	{ComponentReschedule, 8},
	{ComponentVendorDebit, 10},
}

// NeutralScore 没有数据时的中性分
const NeutralScore = 50

// Result 单个 workroom 的评分结果
type Result struct {
	Metrics

	LTRPercent       *float64              `json:"ltrPercent,omitempty"` // laborPO/sales*100，sales 为 0 时为空
	VendorDebitRatio *float64              `json:"vendorDebitRatio,omitempty"`
	Scores           map[Component]float64 `json:"scores"`
	WPI              float64               `json:"wpi"`
	Rank             int                   `json:"rank"`
}

type band struct {
	max   float64
	score float64
}

var (
	detailsCycleBands   = []band{{5, 100}, {10, 60}, {15, 40}, {20, 30}}
	jobsCycleBands      = []band{{5, 100}, {10, 80}, {15, 60}, {20, 40}}
	workOrderCycleBands = []band{{15, 100}, {25, 80}, {35, 60}, {45, 40}}
	rescheduleBands     = []band{{10, 100}, {20, 80}, {30, 60}, {40, 40}}
	vendorDebitBands    = []band{{10, 100}, {20, 80}, {30, 60}, {40, 40}}
)

// bandScore 阶梯评分，超过最后一档为 20
func bandScore(v float64, bands []band) float64 {
	for _, b := range bands {
		if v <= b.max {
			return b.score
		}
	}
	return 20
}

// Score 计算六项分数与 WPI
func Score(m Metrics) Result {
	r := Result{Metrics: m, Scores: make(map[Component]float64, len(Weights))}

	r.Scores[ComponentLTR] = ltrScore(m, &r)
	r.Scores[ComponentDetailsCycle] = optionalBandScore(m.DetailsCycleAvg, detailsCycleBands)
	r.Scores[ComponentJobsCycle] = optionalBandScore(m.JobsCycleAvg, jobsCycleBands)
	r.Scores[ComponentReschedule] = optionalBandScore(m.RescheduleAvg, rescheduleBands)

	if m.CycleTimeAvg == nil || *m.CycleTimeAvg == 0 || !isFinite(*m.CycleTimeAvg) {
		r.Scores[ComponentWorkOrderCycle] = NeutralScore
	} else {
		r.Scores[ComponentWorkOrderCycle] = bandScore(*m.CycleTimeAvg, workOrderCycleBands)
	}

	labor := finiteOrZero(m.LaborPO)
	debit := finiteOrZero(m.VendorDebit)
	if cost := labor + debit; cost == 0 {
		r.Scores[ComponentVendorDebit] = 100
	} else {
		ratio := debit / cost * 100
		r.VendorDebitRatio = &ratio
		r.Scores[ComponentVendorDebit] = bandScore(ratio, vendorDebitBands)
	}

	var wpi float64
	for _, w := range Weights {
		wpi += clamp(r.Scores[w.Component]) * w.Weight / 100
	}
	r.WPI = clamp(wpi)
	r.Scores[ComponentWPI] = r.WPI
	return r
}

func ltrScore(m Metrics, r *Result) float64 {
	if m.LTRAvg != nil && isFinite(*m.LTRAvg) {
		return clamp(*m.LTRAvg * 10)
	}

	sales := finiteOrZero(m.Sales)
	if sales == 0 {
		return NeutralScore
	}
	pct := finiteOrZero(m.LaborPO) / sales * 100
	r.LTRPercent = &pct

	switch {
	case pct <= 20:
		return clamp(100 - (pct/20)*30)
	case pct <= 40:
		return 70 - ((pct-20)/20)*70
	default:
		return 0
	}
}

func optionalBandScore(v *float64, bands []band) float64 {
	if v == nil || !isFinite(*v) {
		return NeutralScore
	}
	return bandScore(*v, bands)
}

func clamp(v float64) float64 {
	switch {
	case !isFinite(v):
		return NeutralScore
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// ScoreAll 汇总、评分并按 WPI 降序排名（同分按名称升序）
func ScoreAll(records []model.WorkroomRecord) []Result {
	return Rank(ScoreMetrics(AggregateMetrics(records)))
}

// ScoreMetrics 对已汇总的指标逐个评分
func ScoreMetrics(metrics []Metrics) []Result {
	out := make([]Result, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, Score(m))
	}
	return out
}

// Rank 按 WPI 降序排序并写入名次
func Rank(results []Result) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].WPI != results[j].WPI {
			return results[i].WPI > results[j].WPI
		}
		return results[i].Name < results[j].Name
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
