package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scorecard/internal/api"
	"scorecard/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port    int
	devMode bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&opts.devMode, "dev", false, "开发模式")
	return cmd
}

func runServe(root *rootOptions, opts serveOptions) error {
	banner()

	cfg, info := loadConfig(root)
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.devMode {
		cfg.Server.DevMode = true
	}

	logger := newLogger(cfg)
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewHandler(api.Deps{
		Coordinator: a.coordinator,
		Dashboard:   a.dashboard,
		ImportLogs:  a.store,
		Health:      a.store.Ping,
		MaxUpload:   cfg.Ingest.MaxUploadBytes(),
		Logger:      logger,
	})
	srv := server.NewServer(handler, server.Options{
		DevMode:     cfg.Server.DevMode,
		DevFrontend: "http://localhost:5173",
		Metrics:     a.metrics,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务启动失败: %w", err)
		}
		return nil
	case <-quit:
	}

	fmt.Println("\n正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
	return nil
}
