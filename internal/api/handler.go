package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scorecard/internal/dashboard"
	"scorecard/internal/importer"
	"scorecard/internal/store"
)

// CallerHeader 调用方标识请求头
const CallerHeader = "X-Caller-ID"

// DefaultCaller 未携带调用方标识时使用的分区
const DefaultCaller = "default"

// 业务错误码
const (
	codeBadRequest = 1001
	codeNotFound   = 4004
	codeImport     = 5001
	codeInternal   = 5002
)

// ImportLogReader 导入日志查询
type ImportLogReader interface {
	ListImportLogs(ctx context.Context, callerID string, limit int) ([]store.ImportLog, error)
}

// Handler API 处理器
type Handler struct {
	coordinator *importer.Coordinator
	dashboard   *dashboard.Service
	importLogs  ImportLogReader
	health      func() error
	maxUpload   int64
	log         *slog.Logger
}

// Deps 处理器依赖；ImportLogs/Health 可为空
type Deps struct {
	Coordinator *importer.Coordinator
	Dashboard   *dashboard.Service
	ImportLogs  ImportLogReader
	Health      func() error
	MaxUpload   int64
	Logger      *slog.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		coordinator: deps.Coordinator,
		dashboard:   deps.Dashboard,
		importLogs:  deps.ImportLogs,
		health:      deps.Health,
		maxUpload:   deps.MaxUpload,
		log:         log.With(slog.String("component", "api")),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	// 数据导入
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)

	// 当前数据集
	router.GET("/dashboard", h.GetDashboard)
	router.PUT("/dashboard", h.ReplaceDashboard)
	router.GET("/dashboard/export", h.ExportDashboard)

	// 历史快照
	router.POST("/snapshots", h.SaveSnapshot)
	router.GET("/snapshots", h.ListSnapshots)
	router.DELETE("/snapshots/:id", h.DeleteSnapshot)
	router.DELETE("/snapshots", h.ClearSnapshots)

	// 历史视图
	router.GET("/history", h.GetHistory)
	router.GET("/history/trend", h.GetTrend)
	router.GET("/history/export", h.ExportHistory)
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// callerID 读取调用方分区
func callerID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(CallerHeader)); id != "" {
		return id
	}
	return DefaultCaller
}

// Health 健康检查
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(); err != nil {
			errorResponse(c, codeInternal, "storage unavailable: "+err.Error())
			return
		}
	}
	success(c, gin.H{"status": "ok"})
}
