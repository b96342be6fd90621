package model

import (
	"fmt"
	"strings"
)

// Period 历史视图的聚合周期
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod 解析周期参数，空值默认 weekly
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodYearly:
		return PeriodYearly, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// HistoricalSnapshot 一次保存的上传数据
//
// Week/Month/Year 在创建时由 UploadDate 计算，之后不再修改。
type HistoricalSnapshot struct {
	ID         string        `json:"id"`
	UploadDate string        `json:"uploadDate"` // YYYY-MM-DD
	Week       string        `json:"week"`       // YYYY-W##
	Month      string        `json:"month"`      // YYYY-MM
	Year       string        `json:"year"`       // YYYY
	Timestamp  int64         `json:"timestamp"`  // epoch millis
	Data       DashboardData `json:"data"`
}

// SnapshotFilter 快照查询条件（0 表示不过滤）
type SnapshotFilter struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// IsZero 没有任何过滤条件
func (f SnapshotFilter) IsZero() bool {
	return f.Month == 0 && f.Year == 0
}

// Matches 判断快照是否满足过滤条件
func (f SnapshotFilter) Matches(s *HistoricalSnapshot) bool {
	if f.Year > 0 && s.Year != fmt.Sprintf("%04d", f.Year) {
		return false
	}
	if f.Month > 0 {
		// Month 形如 "2025-03"
		if len(s.Month) < 7 || s.Month[5:7] != fmt.Sprintf("%02d", f.Month) {
			return false
		}
	}
	return true
}
