package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"scorecard/internal/score"
)

// Notifier 风险告警的下游接收方；去重由下游负责
type Notifier interface {
	Notify(ctx context.Context, callerID string, flags []score.RiskFlag) error
	Close() error
}

// Config Kafka 发布配置
type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
	Timeout time.Duration
}

// Message 发布到 Kafka 的告警消息，以 workroom 为 key
type Message struct {
	CallerID  string          `json:"callerId"`
	Workroom  string          `json:"workroom"`
	Component score.Component `json:"component"`
	Score     float64         `json:"score"`
	Threshold float64         `json:"threshold"`
	FlaggedAt time.Time       `json:"flaggedAt"`
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher Kafka 告警发布器
type Publisher struct {
	cfg    Config
	log    *slog.Logger
	writer kafkaMessageWriter
	now    func() time.Time
}

const defaultPublishTimeout = 5 * time.Second

var errNilLogger = errors.New("notifier requires a logger")

// New 根据配置创建通知器；未启用时返回 Noop
func New(cfg Config, log *slog.Logger) (Notifier, error) {
	if log == nil {
		return nil, errNilLogger
	}
	if !cfg.Enabled {
		log.Info("risk_notifier_disabled")
		return Noop{}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	return newPublisherWithWriter(cfg, log, writer), nil
}

func newPublisherWithWriter(cfg Config, log *slog.Logger, writer kafkaMessageWriter) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPublishTimeout
	}
	return &Publisher{
		cfg:    cfg,
		log:    log.With(slog.String("component", "risk_notifier")),
		writer: writer,
		now:    time.Now,
	}
}

// Notify 同步发布告警；超时由 cfg.Timeout 控制
func (p *Publisher) Notify(ctx context.Context, callerID string, flags []score.RiskFlag) error {
	if len(flags) == 0 {
		return nil
	}

	flaggedAt := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(flags))
	for _, f := range flags {
		value, err := json.Marshal(Message{
			CallerID:  callerID,
			Workroom:  f.Workroom,
			Component: f.Component,
			Score:     f.Score,
			Threshold: f.Threshold,
			FlaggedAt: flaggedAt,
		})
		if err != nil {
			return fmt.Errorf("encode risk flag: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(f.Workroom), Value: value})
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("risk_publish_err", slog.Any("err", err), slog.Int("count", len(msgs)))
		return fmt.Errorf("publish risk flags: %w", err)
	}
	p.log.Info("risk_publish_ok", slog.String("topic", p.cfg.Topic), slog.Int("count", len(msgs)))
	return nil
}

// Close 关闭底层 writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop 未启用 Kafka 时使用
type Noop struct{}

func (Noop) Notify(context.Context, string, []score.RiskFlag) error { return nil }
func (Noop) Close() error                                           { return nil }
