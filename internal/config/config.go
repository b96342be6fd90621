package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Ingest  IngestConfig  `toml:"ingest"`
	Scoring ScoringConfig `toml:"scoring"`
	Kafka   KafkaConfig   `toml:"kafka"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置；相对路径以可执行文件目录为基准
type DataConfig struct {
	DataDir    string `toml:"data_dir"`
	DBFile     string `toml:"db_file"`
	CacheDir   string `toml:"cache_dir"`
	LookupFile string `toml:"lookup_file"` // 为空时使用内置对照表
}

// IngestConfig 导入配置
type IngestConfig struct {
	CSVMode     string `toml:"csv_mode"` // quoted / naive
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// ScoringConfig 评分配置
type ScoringConfig struct {
	RiskThreshold float64            `toml:"risk_threshold"`
	Components    map[string]float64 `toml:"components"` // 分项单独阈值
}

// KafkaConfig 风险告警发布配置
type KafkaConfig struct {
	Enabled        bool     `toml:"enabled"`
	Brokers        []string `toml:"brokers"`
	Topic          string   `toml:"topic"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:  "data",
			DBFile:   "scorecard.db",
			CacheDir: "cache",
		},
		Ingest: IngestConfig{
			CSVMode:     "quoted",
			MaxUploadMB: 32,
		},
		Scoring: ScoringConfig{
			RiskThreshold: 60,
		},
		Kafka: KafkaConfig{
			Enabled:        false,
			Topic:          "scorecard.risk-flags",
			TimeoutSeconds: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFile 加载指定配置文件；文件不存在时使用默认配置。环境变量总是最后生效。
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	applyEnv(config)
	return config, info, nil
}

// applyEnv 环境变量覆盖（容器 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("SCORECARD_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("SCORECARD_CSV_MODE"); v != "" {
		config.Ingest.CSVMode = v
	}
	if v := os.Getenv("SCORECARD_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		config.Kafka.Brokers = brokers
		config.Kafka.Enabled = len(brokers) > 0
	}
	if v := os.Getenv("SCORECARD_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

// ResolveDataDir 数据目录的绝对路径
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录与缓存目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dataDir, config.Data.CacheDir), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath 数据库文件路径
func DBPath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), config.Data.DBFile)
}

// CachePath 本地缓存目录
func CachePath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), config.Data.CacheDir)
}

// SlogLevel 日志级别，未知值按 info 处理
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// MaxUploadBytes 上传大小上限
func (c IngestConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(c.MaxUploadMB) << 20
}
