package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 进程内指标
type Registry struct {
	reg *prometheus.Registry

	ImportsTotal        *prometheus.CounterVec // label: status
	ImportRows          *prometheus.CounterVec // label: result (imported/skipped)
	ImportDurationSec   prometheus.Histogram
	PersistenceFailures *prometheus.CounterVec // label: op
	CacheFallbacks      prometheus.Counter
	RiskFlagsPublished  prometheus.Counter
	NotifyFailures      prometheus.Counter
	SnapshotsSaved      prometheus.Counter
}

// NewRegistry 创建独立的指标注册表
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_imports_total",
		Help: "Uploaded files processed, by outcome.",
	}, []string{"status"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_import_rows_total",
		Help: "Data rows seen during import, by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scorecard_import_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_persistence_failures_total",
	}, []string{"op"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{Name: "scorecard_cache_fallbacks_total"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "scorecard_risk_flags_published_total"})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "scorecard_notify_failures_total"})
	snapshots := prometheus.NewCounter(prometheus.CounterOpts{Name: "scorecard_snapshots_saved_total"})

	r.MustRegister(imports, rows, duration, persistence, fallbacks, published, notifyFailures, snapshots)
	return &Registry{
		reg:                 r,
		ImportsTotal:        imports,
		ImportRows:          rows,
		ImportDurationSec:   duration,
		PersistenceFailures: persistence,
		CacheFallbacks:      fallbacks,
		RiskFlagsPublished:  published,
		NotifyFailures:      notifyFailures,
		SnapshotsSaved:      snapshots,
	}
}

// Handler /metrics 处理器
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
