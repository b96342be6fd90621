package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scorecard/internal/importer"
)

// importLogLimit 导入日志默认条数
const importLogLimit = 50

// ImportResult 导入接口返回
type ImportResult struct {
	Report   *importer.ImportReport `json:"report"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Import 导入视觉数据与问卷数据，成功后替换当前数据集
// POST /api/import （stream=true 时以 SSE 推送进度）
func (h *Handler) Import(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, codeBadRequest, "invalid multipart form")
		return
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File["file"]...)
	headers = append(headers, form.File["survey"]...)
	if len(headers) == 0 {
		errorResponse(c, codeBadRequest, "no file uploaded")
		return
	}

	uploads := make([]importer.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			errorResponse(c, codeBadRequest, err.Error())
			return
		}
		uploads = append(uploads, up)
	}

	caller := callerID(c)
	opts := importer.ImportOptions{
		CallerID:   caller,
		Files:      uploads,
		Thresholds: h.dashboard.Thresholds(),
	}

	if stream, _ := strconv.ParseBool(c.Query("stream")); stream {
		h.importStream(c, opts)
		return
	}

	report, err := h.coordinator.Run(c.Request.Context(), opts)
	if err != nil {
		errorResponse(c, codeImport, err.Error())
		return
	}

	view := h.dashboard.Replace(c.Request.Context(), caller, report.Dashboard())
	success(c, ImportResult{Report: report, Warnings: view.Warnings})
}

// importStream SSE 推送导入进度；done 之后追加 saved 事件
func (h *Handler) importStream(c *gin.Context, opts importer.ImportOptions) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, codeInternal, "streaming not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	for event := range h.coordinator.Import(ctx, opts) {
		writeEvent(c, flusher, event)

		if event.Type != "done" {
			continue
		}
		report, ok := event.Data.(*importer.ImportReport)
		if !ok {
			continue
		}
		view := h.dashboard.Replace(ctx, opts.CallerID, report.Dashboard())
		writeEvent(c, flusher, importer.ProgressEvent{
			Type:      "saved",
			Message:   "dashboard replaced",
			Data:      gin.H{"workrooms": len(view.Data.Workrooms), "warnings": view.Warnings},
			Timestamp: event.Timestamp,
		})
	}
}

func writeEvent(c *gin.Context, flusher http.Flusher, event importer.ProgressEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		return
	}
	// SSE 格式: data: {json}\n\n
	fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
	flusher.Flush()
}

func readUpload(fh *multipart.FileHeader) (importer.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return importer.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return importer.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return importer.Upload{Filename: fh.Filename, Content: content}, nil
}

// ListImports 导入日志
// GET /api/imports?limit=50
func (h *Handler) ListImports(c *gin.Context) {
	if h.importLogs == nil {
		success(c, []any{})
		return
	}

	limit := importLogLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errorResponse(c, codeBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	logs, err := h.importLogs.ListImportLogs(c.Request.Context(), callerID(c), limit)
	if err != nil {
		h.log.Error("list_import_logs_failed", slog.Any("err", err))
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, logs)
}
