package score

import (
	"math"
	"strings"

	"scorecard/internal/model"
)

// Metrics 单个 workroom 在当前数据集中的汇总指标
//
// 金额为合计；可选指标为出现值的平均，没有任何值时为 nil。
type Metrics struct {
	Name  string `json:"name"`
	Store string `json:"store,omitempty"`

	Sales       float64 `json:"sales"`
	LaborPO     float64 `json:"laborPO"`
	VendorDebit float64 `json:"vendorDebit"`

	LTRAvg          *float64 `json:"ltrAvg,omitempty"`
	DetailsCycleAvg *float64 `json:"detailsCycleAvg,omitempty"`
	JobsCycleAvg    *float64 `json:"jobsCycleAvg,omitempty"`
	CycleTimeAvg    *float64 `json:"cycleTimeAvg,omitempty"`
	RescheduleAvg   *float64 `json:"rescheduleAvg,omitempty"`

	Records   int     `json:"records"`
	Completed float64 `json:"completed"`
}

type average struct {
	sum   float64
	count int
}

func (a *average) add(v *float64) {
	if v == nil || !isFinite(*v) {
		return
	}
	a.sum += *v
	a.count++
}

func (a *average) value() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.sum / float64(a.count)
	return &v
}

type accumulator struct {
	m                                     Metrics
	ltr, details, jobs, cycle, reschedule average
}

// AggregateMetrics 按名称汇总记录，输出顺序为名称首次出现的顺序
func AggregateMetrics(records []model.WorkroomRecord) []Metrics {
	index := make(map[string]int)
	accs := make([]*accumulator, 0)

	for i := range records {
		r := &records[i]
		name := strings.TrimSpace(r.Name)

		pos, ok := index[name]
		if !ok {
			pos = len(accs)
			index[name] = pos
			accs = append(accs, &accumulator{m: Metrics{Name: name, Store: r.Store}})
		}
		acc := accs[pos]

		acc.m.Sales += finiteOrZero(r.Sales)
		acc.m.LaborPO += finiteOrZero(r.LaborPO)
		acc.m.VendorDebit += finiteOrZero(r.VendorDebit)
		acc.m.Records++
		if r.Completed != nil {
			acc.m.Completed += finiteOrZero(*r.Completed)
		}

		acc.ltr.add(r.LTRScore)
		acc.details.add(r.DetailsCycleTime)
		acc.jobs.add(r.JobsWorkCycleTime)
		acc.cycle.add(r.CycleTime)
		acc.reschedule.add(r.RescheduleRate)
	}

	out := make([]Metrics, 0, len(accs))
	for _, acc := range accs {
		m := acc.m
		m.LTRAvg = acc.ltr.value()
		m.DetailsCycleAvg = acc.details.value()
		m.JobsCycleAvg = acc.jobs.value()
		m.CycleTimeAvg = acc.cycle.value()
		m.RescheduleAvg = acc.reschedule.value()
		out = append(out, m)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
