package history

import (
	"sort"

	"scorecard/internal/model"
	"scorecard/internal/score"
)

// Query 历史视图查询
type Query struct {
	Period model.Period
	Filter model.SnapshotFilter
}

// Row 历史视图中的一个 workroom
//
// Sales/LaborPO/VendorDebit 为展示值：weekly 为每个快照的平均值，monthly/yearly 为合计。
// Records 与 Completed 始终为合计。
type Row struct {
	Name        string  `json:"name"`
	Store       string  `json:"store,omitempty"`
	Sales       float64 `json:"sales"`
	LaborPO     float64 `json:"laborPO"`
	VendorDebit float64 `json:"vendorDebit"`

	TotalSales       float64 `json:"totalSales"`
	TotalLaborPO     float64 `json:"totalLaborPO"`
	TotalVendorDebit float64 `json:"totalVendorDebit"`

	Records   int                         `json:"records"`
	Completed float64                     `json:"completed"`
	Scores    map[score.Component]float64 `json:"scores"`
	WPI       float64                     `json:"wpi"`
	Rank      int                         `json:"rank"`
}

// Summary 历史视图结果
type Summary struct {
	Period        model.Period `json:"period"`
	SnapshotCount int          `json:"snapshotCount"`
	SnapshotIDs   []string     `json:"snapshotIds"`
	Workrooms     []Row        `json:"workrooms"`
}

// Bucket 趋势视图中的一个周期
type Bucket struct {
	Key string `json:"key"`
	Summary
}

// Filter 按月份/年份过滤快照；weekly 且有过滤条件时只保留最近的一个快照
func Filter(snapshots []model.HistoricalSnapshot, q Query) []model.HistoricalSnapshot {
	matched := make([]model.HistoricalSnapshot, 0, len(snapshots))
	for i := range snapshots {
		if q.Filter.Matches(&snapshots[i]) {
			matched = append(matched, snapshots[i])
		}
	}

	if q.Period != model.PeriodWeekly || q.Filter.IsZero() || len(matched) <= 1 {
		return matched
	}

	latest := 0
	for i := 1; i < len(matched); i++ {
		if newer(&matched[i], &matched[latest]) {
			latest = i
		}
	}
	return matched[latest : latest+1]
}

func newer(a, b *model.HistoricalSnapshot) bool {
	if a.UploadDate != b.UploadDate {
		return a.UploadDate > b.UploadDate
	}
	return a.Timestamp > b.Timestamp
}

// Summarize 汇总匹配的快照并按 WPI 排名
func Summarize(snapshots []model.HistoricalSnapshot, q Query) Summary {
	matched := Filter(snapshots, q)
	return summarize(matched, q.Period)
}

func summarize(matched []model.HistoricalSnapshot, period model.Period) Summary {
	out := Summary{
		Period:        period,
		SnapshotCount: len(matched),
		SnapshotIDs:   make([]string, 0, len(matched)),
		Workrooms:     []Row{},
	}
	if len(matched) == 0 {
		return out
	}

	var records []model.WorkroomRecord
	for i := range matched {
		out.SnapshotIDs = append(out.SnapshotIDs, matched[i].ID)
		records = append(records, matched[i].Data.Workrooms...)
	}

	divisor := 1.0
	if period == model.PeriodWeekly {
		divisor = float64(len(matched))
	}

	for _, r := range score.ScoreAll(records) {
		out.Workrooms = append(out.Workrooms, Row{
			Name:             r.Name,
			Store:            r.Store,
			Sales:            r.Sales / divisor,
			LaborPO:          r.LaborPO / divisor,
			VendorDebit:      r.VendorDebit / divisor,
			TotalSales:       r.Sales,
			TotalLaborPO:     r.LaborPO,
			TotalVendorDebit: r.VendorDebit,
			Records:          r.Records,
			Completed:        r.Completed,
			Scores:           r.Scores,
			WPI:              r.WPI,
			Rank:             r.Rank,
		})
	}
	return out
}

// Buckets 按周期键分组（按时间先后），每组使用与 Summarize 相同的规则汇总
func Buckets(snapshots []model.HistoricalSnapshot, period model.Period) []Bucket {
	groups := make(map[string][]model.HistoricalSnapshot)
	for i := range snapshots {
		key := periodKey(&snapshots[i], period)
		groups[key] = append(groups[key], snapshots[i])
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: k, Summary: summarize(groups[k], period)})
	}
	return out
}
