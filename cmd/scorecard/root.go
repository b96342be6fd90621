package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"scorecard/internal/config"
)

type rootOptions struct {
	configPath string
	dataDir    string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "scorecard",
		Short:        "Workroom scorecard: import, score and track workroom performance",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config.toml path (default: next to the executable)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "dataDir", "", "data directory (overrides config file)")

	cmd.AddCommand(newServeCmd(&opts))
	cmd.AddCommand(newIngestCmd(&opts))
	return cmd
}

// loadConfig 加载配置；失败时回退到默认配置
func loadConfig(opts *rootOptions) (*config.AppConfig, config.LoadConfigInfo) {
	var (
		cfg  *config.AppConfig
		info config.LoadConfigInfo
		err  error
	)
	if opts.configPath != "" {
		cfg, info, err = config.LoadFile(opts.configPath)
	} else {
		cfg, info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if opts.dataDir != "" {
		cfg.Data.DataDir = opts.dataDir
	}
	return cfg, info
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
}

func banner() {
	fmt.Println("==========================================")
	fmt.Println("  Scorecard - Workroom 绩效评分工具")
	fmt.Println("==========================================")
}
