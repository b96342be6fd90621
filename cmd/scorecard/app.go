package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"scorecard/internal/cache"
	"scorecard/internal/config"
	"scorecard/internal/dashboard"
	"scorecard/internal/importer"
	"scorecard/internal/metrics"
	"scorecard/internal/normalize"
	"scorecard/internal/notify"
	"scorecard/internal/parser"
	"scorecard/internal/score"
	"scorecard/internal/store"
)

// app 进程内组装好的服务
type app struct {
	cfg         *config.AppConfig
	log         *slog.Logger
	metrics     *metrics.Registry
	store       *store.Store
	cache       *cache.Cache
	notifier    notify.Notifier
	coordinator *importer.Coordinator
	dashboard   *dashboard.Service
}

func newApp(cfg *config.AppConfig, log *slog.Logger) (*app, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	log.Info("data_dir_ready", slog.String("path", dataDir))

	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewRegistry(),
		store:   st,
	}

	var localCache dashboard.Cache
	if c, err := cache.Open(config.CachePath(cfg)); err != nil {
		log.Warn("cache_disabled", slog.Any("err", err))
	} else {
		a.cache = c
		localCache = c
	}

	notifier, err := notify.New(notify.Config{
		Enabled: cfg.Kafka.Enabled,
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Timeout: time.Duration(cfg.Kafka.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	a.notifier = notifier

	coordinator, err := newCoordinator(cfg, log, importer.WithMetrics(a.metrics), importer.WithImportLogger(st))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.coordinator = coordinator

	a.dashboard = dashboard.NewService(dashboard.Config{
		Persistence: st,
		Cache:       localCache,
		Notifier:    notifier,
		Metrics:     a.metrics,
		Logger:      log,
		Thresholds:  thresholds(cfg),
	})
	return a, nil
}

// Close 释放数据库、缓存与消息连接
func (a *app) Close() {
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.log.Warn("notifier_close_failed", slog.Any("err", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache_close_failed", slog.Any("err", err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store_close_failed", slog.Any("err", err))
	}
}

// newCoordinator 按配置创建导入协调器（对照表、CSV 模式）
func newCoordinator(cfg *config.AppConfig, log *slog.Logger, opts ...importer.Option) (*importer.Coordinator, error) {
	lookup := normalize.DefaultLookup()
	if path := cfg.Data.LookupFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.ResolveDataDir(cfg), path)
		}
		l, err := normalize.LoadLookup(path)
		if err != nil {
			return nil, err
		}
		lookup = l
	}

	p := parser.NewFileParser(parser.CSVMode(cfg.Ingest.CSVMode))
	return importer.NewCoordinator(p, normalize.NewNormalizer(lookup), log, opts...), nil
}

func thresholds(cfg *config.AppConfig) score.Thresholds {
	t := score.Thresholds{Default: cfg.Scoring.RiskThreshold}
	if t.Default <= 0 {
		t.Default = score.DefaultRiskThreshold
	}
	if len(cfg.Scoring.Components) > 0 {
		t.PerComponent = make(map[score.Component]float64, len(cfg.Scoring.Components))
		for name, v := range cfg.Scoring.Components {
			t.PerComponent[score.Component(name)] = v
		}
	}
	return t
}
