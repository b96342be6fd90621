package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scorecard/internal/metrics"
	"scorecard/internal/model"
	"scorecard/internal/normalize"
	"scorecard/internal/parser"
	"scorecard/internal/score"
	"scorecard/internal/store"
)

// ImportLogger 导入日志的持久化（可选）
type ImportLogger interface {
	CreateImportLog(ctx context.Context, callerID, filename string) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, entry store.ImportLog) error
}

// Upload 上传的文件
type Upload struct {
	Filename string
	Content  []byte
}

// ImportOptions 导入选项
type ImportOptions struct {
	CallerID   string
	Files      []Upload // 视觉数据与问卷数据可以放在任意位置，按内容区分
	Thresholds score.Thresholds
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/file_start/file_done/info/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Coordinator 导入协调器：解析 -> 列识别 -> 归一化 -> 合并 -> 评分
type Coordinator struct {
	parser     *parser.FileParser
	resolver   *parser.ColumnResolver
	normalizer *normalize.Normalizer
	log        *slog.Logger
	metrics    *metrics.Registry
	importLogs ImportLogger
}

// Option 协调器可选依赖
type Option func(*Coordinator)

// WithMetrics 记录导入指标
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithImportLogger 写入导入日志
func WithImportLogger(l ImportLogger) Option {
	return func(c *Coordinator) { c.importLogs = l }
}

// NewCoordinator 创建导入协调器
func NewCoordinator(p *parser.FileParser, n *normalize.Normalizer, log *slog.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	c := &Coordinator{
		parser:     p,
		resolver:   parser.NewColumnResolver(nil),
		normalizer: n,
		log:        log.With(slog.String("component", "importer")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Import 异步执行导入，返回进度通道；最后一个事件为 done 或 error
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		report, err := c.run(ctx, opts, func(evt ProgressEvent) {
			c.sendProgress(progressChan, evt)
		})
		// 结束事件必须送达，使用阻塞发送
		if err != nil {
			progressChan <- ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Timestamp: time.Now(),
			}
			return
		}
		progressChan <- ProgressEvent{
			Type:      "done",
			Message:   "import finished",
			Data:      report,
			Timestamp: time.Now(),
		}
	}()

	return progressChan
}

// Run 同步执行导入
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	return c.run(ctx, opts, func(ProgressEvent) {})
}

type batch struct {
	kind    parser.BatchKind
	records []model.WorkroomRecord
}

func (c *Coordinator) run(ctx context.Context, opts ImportOptions, progress func(ProgressEvent)) (*ImportReport, error) {
	startTime := time.Now()
	if len(opts.Files) == 0 {
		return nil, errors.New("no file uploaded")
	}

	progress(ProgressEvent{
		Type:      "start",
		Message:   fmt.Sprintf("importing %d file(s)", len(opts.Files)),
		Data:      map[string]int{"files": len(opts.Files)},
		Timestamp: time.Now(),
	})

	report := &ImportReport{Files: []FileResult{}}
	var visual, survey []model.WorkroomRecord

	for _, up := range opts.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress(ProgressEvent{
			Type:      "file_start",
			Message:   fmt.Sprintf("parsing %s", up.Filename),
			Data:      map[string]string{"filename": up.Filename},
			Timestamp: time.Now(),
		})

		logID := c.beginImportLog(ctx, opts.CallerID, up.Filename)
		b, result, err := c.processFile(up)
		c.finishImportLog(ctx, logID, result)
		report.Files = append(report.Files, result)

		if err != nil {
			c.log.Warn("import_file_rejected", slog.String("file", up.Filename), slog.Any("err", err))
			c.observe(StatusError, 0, 0, startTime)
			return nil, err
		}

		switch b.kind {
		case parser.BatchSurvey:
			survey = append(survey, b.records...)
			report.SurveyRows += len(b.records)
		default:
			visual = append(visual, b.records...)
			report.VisualRows += len(b.records)
		}
		report.ImportedRows += result.ImportedRows
		report.SkippedRows += result.SkippedRows

		progress(ProgressEvent{
			Type:      "file_done",
			Message:   fmt.Sprintf("%s: %d rows as %s", up.Filename, result.ImportedRows, result.Batch),
			Data:      result,
			Timestamp: time.Now(),
		})
	}

	report.Records = normalize.Merge(visual, survey)
	for i := range report.Records {
		if !report.Records[i].HasVisualData() {
			report.SurveyOnly++
		}
		if report.Records[i].HasSurveyData() {
			report.WithSurvey++
		}
	}
	report.Results = score.ScoreAll(report.Records)

	thresholds := opts.Thresholds
	if thresholds.Default == 0 && len(thresholds.PerComponent) == 0 {
		thresholds = score.DefaultThresholds()
	}
	report.RiskFlags = score.RiskFlags(report.Results, thresholds)
	report.Duration = time.Since(startTime)

	progress(ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("%d workrooms scored, %d risk flags", len(report.Results), len(report.RiskFlags)),
		Timestamp: time.Now(),
	})

	c.log.Info("import_done",
		slog.String("caller", opts.CallerID),
		slog.Int("files", len(opts.Files)),
		slog.Int("workrooms", len(report.Records)),
		slog.Int("skipped_rows", report.SkippedRows),
		slog.Duration("duration", report.Duration),
	)
	c.observe(StatusSuccess, report.ImportedRows, report.SkippedRows, startTime)
	return report, nil
}

// processFile 解析单个文件并归一化所有行
func (c *Coordinator) processFile(up Upload) (batch, FileResult, error) {
	fileStart := time.Now()
	result := FileResult{Filename: up.Filename, Status: StatusError}

	parsed, err := c.parser.Parse(up.Filename, up.Content)
	if err != nil {
		result.Errors = []string{err.Error()}
		result.Duration = time.Since(fileStart)
		return batch{}, result, err
	}
	result.Kind = parsed.Kind
	result.TotalRows = parsed.RowCount()

	var b batch
	if parsed.Kind.IsTabular() {
		b = c.normalizeRows(parsed, &result)
	} else {
		b = c.normalizeJSON(parsed, &result)
	}

	result.Batch = b.kind
	result.ImportedRows = len(b.records)
	result.Status = StatusSuccess
	result.Duration = time.Since(fileStart)
	return b, result, nil
}

func (c *Coordinator) normalizeRows(parsed *parser.ParsedFile, result *FileResult) batch {
	cols := c.resolver.Resolve(parsed.Header, parsed.Kind)

	b := batch{kind: parser.BatchVisual}
	if cols.IsSurvey() {
		b.kind = parser.BatchSurvey
	}

	for i, row := range parsed.Rows {
		rec, ok := c.normalizer.Normalize(row, cols, i+1)
		if !ok || !rec.HasValidName() {
			result.SkippedRows++
			continue
		}
		b.records = append(b.records, rec)
	}
	return b
}

func (c *Coordinator) normalizeJSON(parsed *parser.ParsedFile, result *FileResult) batch {
	b := batch{kind: parsed.Batch}
	result.SkippedRows += len(parsed.Invalid)
	result.Errors = append(result.Errors, parsed.Invalid...)
	for i, raw := range parsed.Records {
		rec := c.normalizer.NormalizeRecord(raw, i+1)
		if !rec.HasValidName() {
			result.SkippedRows++
			continue
		}
		b.records = append(b.records, rec)
	}
	return b
}

func (c *Coordinator) beginImportLog(ctx context.Context, callerID, filename string) int64 {
	if c.importLogs == nil {
		return 0
	}
	id, err := c.importLogs.CreateImportLog(ctx, callerID, filename)
	if err != nil {
		c.log.Warn("import_log_create_err", slog.Any("err", err))
		return 0
	}
	return id
}

func (c *Coordinator) finishImportLog(ctx context.Context, id int64, result FileResult) {
	if c.importLogs == nil || id == 0 {
		return
	}
	entry := store.ImportLog{
		FileKind:     string(result.Kind),
		BatchKind:    string(result.Batch),
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		SkippedRows:  result.SkippedRows,
		Status:       result.Status,
	}
	if len(result.Errors) > 0 {
		entry.ErrorMessage = result.Errors[0]
	}
	if err := c.importLogs.UpdateImportLog(ctx, id, entry); err != nil {
		c.log.Warn("import_log_update_err", slog.Any("err", err))
	}
}

func (c *Coordinator) observe(status string, imported, skipped int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ImportsTotal.WithLabelValues(status).Inc()
	c.metrics.ImportRows.WithLabelValues("imported").Add(float64(imported))
	c.metrics.ImportRows.WithLabelValues("skipped").Add(float64(skipped))
	c.metrics.ImportDurationSec.Observe(time.Since(start).Seconds())
}

// sendProgress 发送进度事件（非阻塞）
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道满了，跳过
	}
}
