package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"scorecard/internal/model"
)

// DateLayout 上传日期格式
const DateLayout = "2006-01-02"

// PeriodKeys 计算日期所属的 ISO 周、月份与年份
func PeriodKeys(date time.Time) (week, month, year string) {
	isoYear, isoWeek := date.ISOWeek()
	week = fmt.Sprintf("%04d-W%02d", isoYear, isoWeek)
	month = date.Format("2006-01")
	year = date.Format("2006")
	return week, month, year
}

// NewSnapshot 基于上传日期创建快照；周期键只在此处计算一次
func NewSnapshot(data model.DashboardData, date, now time.Time) model.HistoricalSnapshot {
	week, month, year := PeriodKeys(date)

	records := make([]model.WorkroomRecord, 0, len(data.Workrooms))
	for i := range data.Workrooms {
		records = append(records, data.Workrooms[i].Clone())
	}

	return model.HistoricalSnapshot{
		ID:         uuid.New().String(),
		UploadDate: date.Format(DateLayout),
		Week:       week,
		Month:      month,
		Year:       year,
		Timestamp:  now.UnixMilli(),
		Data:       model.DashboardData{Workrooms: records},
	}
}

// ParseDate 解析 YYYY-MM-DD；空值返回 fallback
func ParseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// periodKey 快照在指定周期下的分组键
func periodKey(s *model.HistoricalSnapshot, period model.Period) string {
	switch period {
	case model.PeriodMonthly:
		return s.Month
	case model.PeriodYearly:
		return s.Year
	}
	return s.Week
}
