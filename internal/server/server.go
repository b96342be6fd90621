package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scorecard/internal/api"
	"scorecard/internal/metrics"
)

// Options 服务器配置
type Options struct {
	DevMode     bool
	DevFrontend string // 开发模式下未知路由转发的前端地址
	Metrics     *metrics.Registry
}

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	handler *api.Handler
}

// NewServer 创建服务器
func NewServer(handler *api.Handler, opts Options) *Server {
	if !opts.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:  gin.Default(),
		handler: handler,
	}
	s.setupRoutes(opts)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(opts Options) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.CallerHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(apiGroup)
	}

	if opts.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	if opts.DevMode && opts.DevFrontend != "" {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, opts.DevFrontend+c.Request.URL.Path)
		})
	}
}

// Handler 返回底层 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
