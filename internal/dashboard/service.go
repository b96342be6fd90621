package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"scorecard/internal/history"
	"scorecard/internal/metrics"
	"scorecard/internal/model"
	"scorecard/internal/notify"
	"scorecard/internal/score"
	"scorecard/internal/store"
)

// Persistence 数据集与快照的持久化，全部按调用方分区
type Persistence interface {
	LoadDashboard(ctx context.Context, callerID string) (model.DashboardData, error)
	SaveDashboard(ctx context.Context, callerID string, data model.DashboardData) error
	LoadSnapshots(ctx context.Context, callerID string, filter model.SnapshotFilter) ([]model.HistoricalSnapshot, error)
	SaveSnapshot(ctx context.Context, callerID string, data model.DashboardData, date time.Time) (model.HistoricalSnapshot, error)
	DeleteSnapshot(ctx context.Context, callerID, id string) error
	ClearSnapshots(ctx context.Context, callerID string) (int64, error)
}

// Cache 本地缓存
type Cache interface {
	PutDashboard(callerID string, data model.DashboardData) error
	GetDashboard(callerID string) (model.DashboardData, bool, error)
	PutSnapshot(callerID string, snap model.HistoricalSnapshot) error
	ReplaceSnapshots(callerID string, snaps []model.HistoricalSnapshot) error
	Snapshots(callerID string) ([]model.HistoricalSnapshot, error)
	DeleteSnapshot(callerID, id string) error
	ClearSnapshots(callerID string) error
}

// ErrSnapshotNotFound 快照不存在
var ErrSnapshotNotFound = errors.New("snapshot not found")

// View 当前数据集及其评分
type View struct {
	Data      model.DashboardData `json:"data"`
	Results   []score.Result      `json:"results"`
	RiskFlags []score.RiskFlag    `json:"riskFlags"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// Service 数据集服务
type Service struct {
	persist    Persistence
	cache      Cache
	notifier   notify.Notifier
	metrics    *metrics.Registry
	log        *slog.Logger
	thresholds score.Thresholds
	now        func() time.Time
}

// Config 服务依赖；Cache/Notifier/Metrics 可为空
type Config struct {
	Persistence Persistence
	Cache       Cache
	Notifier    notify.Notifier
	Metrics     *metrics.Registry
	Logger      *slog.Logger
	Thresholds  score.Thresholds
}

// NewService 创建数据集服务
func NewService(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	thresholds := cfg.Thresholds
	if thresholds.Default == 0 && len(thresholds.PerComponent) == 0 {
		thresholds = score.DefaultThresholds()
	}
	return &Service{
		persist:    cfg.Persistence,
		cache:      cfg.Cache,
		notifier:   notifier,
		metrics:    cfg.Metrics,
		log:        log.With(slog.String("component", "dashboard")),
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Thresholds 当前风险阈值
func (s *Service) Thresholds() score.Thresholds { return s.thresholds }

// Dashboard 读取当前数据集；持久化失败时返回缓存副本与警告
func (s *Service) Dashboard(ctx context.Context, callerID string) View {
	var warnings []string

	data, err := s.persist.LoadDashboard(ctx, callerID)
	if err != nil {
		warnings = append(warnings, s.persistenceFailed("load_dashboard", err).Error())
		data = s.cachedDashboard(callerID, &warnings)
	} else {
		s.cachePut("dashboard", func() error { return s.cache.PutDashboard(callerID, data) })
	}

	return s.view(data, warnings)
}

// Replace 整体替换当前数据集，并对低于阈值的分项发出告警
func (s *Service) Replace(ctx context.Context, callerID string, data model.DashboardData) View {
	if data.Workrooms == nil {
		data.Workrooms = []model.WorkroomRecord{}
	}

	var warnings []string
	if err := s.persist.SaveDashboard(ctx, callerID, data); err != nil {
		warnings = append(warnings, s.persistenceFailed("save_dashboard", err).Error())
	}
	s.cachePut("dashboard", func() error { return s.cache.PutDashboard(callerID, data) })

	v := s.view(data, warnings)
	s.notify(ctx, callerID, v.RiskFlags)
	return v
}

// SaveSnapshot 以当前数据集创建快照
func (s *Service) SaveSnapshot(ctx context.Context, callerID string, date time.Time) (model.HistoricalSnapshot, []string) {
	current := s.Dashboard(ctx, callerID)
	warnings := current.Warnings

	snap, err := s.persist.SaveSnapshot(ctx, callerID, current.Data, date)
	if err != nil {
		warnings = append(warnings, s.persistenceFailed("save_snapshot", err).Error())
		snap = history.NewSnapshot(current.Data, date, s.now())
	} else if s.metrics != nil {
		s.metrics.SnapshotsSaved.Inc()
	}
	s.cachePut("snapshot", func() error { return s.cache.PutSnapshot(callerID, snap) })
	return snap, warnings
}

// Snapshots 查询快照（按上传日期升序）
func (s *Service) Snapshots(ctx context.Context, callerID string, filter model.SnapshotFilter) ([]model.HistoricalSnapshot, []string) {
	snaps, err := s.persist.LoadSnapshots(ctx, callerID, filter)
	if err == nil {
		if filter.IsZero() {
			s.cachePut("snapshots", func() error { return s.cache.ReplaceSnapshots(callerID, snaps) })
		}
		return snaps, nil
	}

	warnings := []string{s.persistenceFailed("load_snapshots", err).Error()}
	cached := s.cachedSnapshots(callerID, &warnings)

	out := make([]model.HistoricalSnapshot, 0, len(cached))
	for i := range cached {
		if filter.Matches(&cached[i]) {
			out = append(out, cached[i])
		}
	}
	return out, warnings
}

// DeleteSnapshot 删除单个快照
func (s *Service) DeleteSnapshot(ctx context.Context, callerID, id string) ([]string, error) {
	var warnings []string
	if err := s.persist.DeleteSnapshot(ctx, callerID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		warnings = append(warnings, s.persistenceFailed("delete_snapshot", err).Error())
	}
	s.cachePut("snapshot", func() error { return s.cache.DeleteSnapshot(callerID, id) })
	return warnings, nil
}

// ClearSnapshots 删除调用方全部快照
func (s *Service) ClearSnapshots(ctx context.Context, callerID string) (int64, []string) {
	var warnings []string
	n, err := s.persist.ClearSnapshots(ctx, callerID)
	if err != nil {
		warnings = append(warnings, s.persistenceFailed("clear_snapshots", err).Error())
	}
	s.cachePut("snapshots", func() error { return s.cache.ClearSnapshots(callerID) })
	return n, warnings
}

// History 历史视图
func (s *Service) History(ctx context.Context, callerID string, q history.Query) (history.Summary, []string) {
	snaps, warnings := s.Snapshots(ctx, callerID, q.Filter)
	return history.Summarize(snaps, q), warnings
}

// Trend 按周期分组的趋势视图
func (s *Service) Trend(ctx context.Context, callerID string, period model.Period) ([]history.Bucket, []string) {
	snaps, warnings := s.Snapshots(ctx, callerID, model.SnapshotFilter{})
	return history.Buckets(snaps, period), warnings
}

func (s *Service) view(data model.DashboardData, warnings []string) View {
	results := score.ScoreAll(data.Workrooms)
	return View{
		Data:      data,
		Results:   results,
		RiskFlags: score.RiskFlags(results, s.thresholds),
		Warnings:  warnings,
	}
}

func (s *Service) notify(ctx context.Context, callerID string, flags []score.RiskFlag) {
	if len(flags) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, callerID, flags); err != nil {
		s.log.Warn("risk_notify_failed", slog.String("caller", callerID), slog.Any("err", err))
		if s.metrics != nil {
			s.metrics.NotifyFailures.Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.RiskFlagsPublished.Add(float64(len(flags)))
	}
}

func (s *Service) persistenceFailed(op string, err error) *PersistenceError {
	pe := &PersistenceError{Op: op, Err: err}
	s.log.Warn("persistence_failed", slog.String("op", op), slog.Any("err", err))
	if s.metrics != nil {
		s.metrics.PersistenceFailures.WithLabelValues(op).Inc()
	}
	return pe
}

func (s *Service) cachedDashboard(callerID string, warnings *[]string) model.DashboardData {
	empty := model.DashboardData{Workrooms: []model.WorkroomRecord{}}
	if s.cache == nil {
		*warnings = append(*warnings, "no cached dashboard available")
		return empty
	}
	data, ok, err := s.cache.GetDashboard(callerID)
	if err != nil {
		s.log.Warn("cache_read_failed", slog.Any("err", err))
	}
	if !ok {
		*warnings = append(*warnings, "no cached dashboard available")
		return empty
	}
	s.fallbackUsed()
	*warnings = append(*warnings, "showing cached dashboard")
	return data
}

func (s *Service) cachedSnapshots(callerID string, warnings *[]string) []model.HistoricalSnapshot {
	if s.cache == nil {
		*warnings = append(*warnings, "no cached snapshots available")
		return nil
	}
	snaps, err := s.cache.Snapshots(callerID)
	if err != nil {
		s.log.Warn("cache_read_failed", slog.Any("err", err))
		*warnings = append(*warnings, "no cached snapshots available")
		return nil
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].UploadDate != snaps[j].UploadDate {
			return snaps[i].UploadDate < snaps[j].UploadDate
		}
		return snaps[i].Timestamp < snaps[j].Timestamp
	})
	s.fallbackUsed()
	*warnings = append(*warnings, "showing cached snapshots")
	return snaps
}

func (s *Service) fallbackUsed() {
	if s.metrics != nil {
		s.metrics.CacheFallbacks.Inc()
	}
}

// cachePut 缓存写入失败只记录日志
func (s *Service) cachePut(what string, fn func() error) {
	if s.cache == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("cache_write_failed", slog.String("what", what), slog.Any("err", err))
	}
}
