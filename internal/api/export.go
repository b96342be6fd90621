package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"scorecard/internal/exporter"
	"scorecard/internal/history"
	"scorecard/internal/model"
)

// ExportDashboard 导出当前排名为 xlsx
// GET /api/dashboard/export
func (h *Handler) ExportDashboard(c *gin.Context) {
	view := h.dashboard.Dashboard(c.Request.Context(), callerID(c))

	f, err := exporter.ExportDashboard(view.Results, view.RiskFlags)
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	h.writeWorkbook(c, f, "dashboard")
}

// ExportHistory 导出历史视图为 xlsx
// GET /api/history/export?period=monthly&month=3&year=2025
func (h *Handler) ExportHistory(c *gin.Context) {
	period, err := model.ParsePeriod(c.Query("period"))
	if err != nil {
		errorResponse(c, codeBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		errorResponse(c, codeBadRequest, err.Error())
		return
	}

	summary, _ := h.dashboard.History(c.Request.Context(), callerID(c), history.Query{Period: period, Filter: filter})
	f, err := exporter.ExportHistory(summary)
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	h.writeWorkbook(c, f, "history-"+string(period))
}

func (h *Handler) writeWorkbook(c *gin.Context, f *excelize.File, kind string) {
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}

	c.Header("Content-Disposition", exporter.ContentDisposition(kind, time.Now()))
	c.Data(http.StatusOK, exporter.ContentType, buf.Bytes())
	h.log.Info("export_done", slog.String("kind", kind), slog.Int("bytes", buf.Len()))
}
