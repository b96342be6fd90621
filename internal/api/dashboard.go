package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scorecard/internal/dashboard"
	"scorecard/internal/history"
	"scorecard/internal/model"
)

// GetDashboard 当前数据集及评分
// GET /api/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	success(c, h.dashboard.Dashboard(c.Request.Context(), callerID(c)))
}

// ReplaceDashboard 整体替换当前数据集
// PUT /api/dashboard
func (h *Handler) ReplaceDashboard(c *gin.Context) {
	var data model.DashboardData
	if err := c.ShouldBindJSON(&data); err != nil {
		errorResponse(c, codeBadRequest, "invalid dashboard payload")
		return
	}

	for i := range data.Workrooms {
		if !data.Workrooms[i].HasValidName() {
			errorResponse(c, codeBadRequest, "workroom "+strconv.Itoa(i)+" has no valid name")
			return
		}
	}

	success(c, h.dashboard.Replace(c.Request.Context(), callerID(c), data))
}

// SaveSnapshotRequest 保存快照请求
type SaveSnapshotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD，为空取今天
}

// SnapshotResult 快照写入结果
type SnapshotResult struct {
	Snapshot model.HistoricalSnapshot `json:"snapshot"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// SaveSnapshot 以当前数据集创建快照
// POST /api/snapshots
func (h *Handler) SaveSnapshot(c *gin.Context) {
	var req SaveSnapshotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, codeBadRequest, "invalid snapshot payload")
			return
		}
	}

	date, err := history.ParseDate(strings.TrimSpace(req.Date), time.Now())
	if err != nil {
		errorResponse(c, codeBadRequest, err.Error())
		return
	}

	snap, warnings := h.dashboard.SaveSnapshot(c.Request.Context(), callerID(c), date)
	success(c, SnapshotResult{Snapshot: snap, Warnings: warnings})
}

// SnapshotList 快照列表
type SnapshotList struct {
	Snapshots []model.HistoricalSnapshot `json:"snapshots"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

// ListSnapshots 查询快照
// GET /api/snapshots?month=3&year=2025
func (h *Handler) ListSnapshots(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		errorResponse(c, codeBadRequest, err.Error())
		return
	}

	snaps, warnings := h.dashboard.Snapshots(c.Request.Context(), callerID(c), filter)
	if snaps == nil {
		snaps = []model.HistoricalSnapshot{}
	}
	success(c, SnapshotList{Snapshots: snaps, Warnings: warnings})
}

// DeleteSnapshot 删除单个快照
// DELETE /api/snapshots/:id
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	warnings, err := h.dashboard.DeleteSnapshot(c.Request.Context(), callerID(c), id)
	if errors.Is(err, dashboard.ErrSnapshotNotFound) {
		errorResponse(c, codeNotFound, "snapshot not found")
		return
	}
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, gin.H{"id": id, "warnings": warnings})
}

// ClearSnapshots 删除全部快照
// DELETE /api/snapshots
func (h *Handler) ClearSnapshots(c *gin.Context) {
	n, warnings := h.dashboard.ClearSnapshots(c.Request.Context(), callerID(c))
	success(c, gin.H{"deleted": n, "warnings": warnings})
}

// HistoryResult 历史视图
type HistoryResult struct {
	history.Summary
	Warnings []string `json:"warnings,omitempty"`
}

// GetHistory 按周期聚合的历史视图
// GET /api/history?period=monthly&month=3&year=2025
func (h *Handler) GetHistory(c *gin.Context) {
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

	summary, warnings := h.dashboard.History(c.Request.Context(), callerID(c), history.Query{Period: period, Filter: filter})
	success(c, HistoryResult{Summary: summary, Warnings: warnings})
}

// TrendResult 趋势视图
type TrendResult struct {
	Period   model.Period     `json:"period"`
	Buckets  []history.Bucket `json:"buckets"`
	Warnings []string         `json:"warnings,omitempty"`
}

// GetTrend 各周期分组的聚合结果
// GET /api/history/trend?period=weekly
func (h *Handler) GetTrend(c *gin.Context) {
	period, err := model.ParsePeriod(c.Query("period"))
	if err != nil {
		errorResponse(c, codeBadRequest, err.Error())
		return
	}

	buckets, warnings := h.dashboard.Trend(c.Request.Context(), callerID(c), period)
	if buckets == nil {
		buckets = []history.Bucket{}
	}
	success(c, TrendResult{Period: period, Buckets: buckets, Warnings: warnings})
}

func parseFilter(c *gin.Context) (model.SnapshotFilter, error) {
	var f model.SnapshotFilter
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return f, errors.New("month must be 1-12")
		}
		f.Month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return f, errors.New("invalid year")
		}
		f.Year = y
	}
	return f, nil
}
