package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Learn   LearnConfig   `mapstructure:"learn"`
	Watcher WatcherConfig `mapstructure:"watcher"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	VectorPath string `mapstructure:"vector_path"`
}

// AIConfig AI 配置
type AIConfig struct {
	Claude      ClaudeConfig      `mapstructure:"claude"`
	SiliconFlow SiliconFlowConfig `mapstructure:"siliconflow"`
}

// ClaudeConfig Claude 配置
type ClaudeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SiliconFlowConfig SiliconFlow 配置
type SiliconFlowConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	EmbedModel  string `mapstructure:"embed_model"`
	RerankModel string `mapstructure:"rerank_model"`
}

// ChatConfig 对话配置
type ChatConfig struct {
	ExportDir string `mapstructure:"export_dir"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// LearnConfig 学习追踪配置
type LearnConfig struct {
	ExplanationsDir string `mapstructure:"explanations_dir"`
}

// WatcherConfig 笔记监控配置
type WatcherConfig struct {
	Paths       []string `mapstructure:"paths"`
	Extensions  []string `mapstructure:"extensions"`
	DebounceSec int      `mapstructure:"debounce_sec"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("MIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.Claude.APIKey = expandEnv(cfg.AI.Claude.APIKey)
	cfg.AI.SiliconFlow.APIKey = expandEnv(cfg.AI.SiliconFlow.APIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Storage.VectorPath = resolvePath(cfg.Storage.VectorPath)
	cfg.Chat.ExportDir = resolvePath(cfg.Chat.ExportDir)
	cfg.Learn.ExplanationsDir = resolvePath(cfg.Learn.ExplanationsDir)

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "mind-cli")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Storage
	v.SetDefault("storage.db_path", "./data/mind.db")
	v.SetDefault("storage.vector_path", "./data/vectors")

	// AI
	v.SetDefault("ai.claude.base_url", "https://api.anthropic.com")
	v.SetDefault("ai.claude.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("ai.siliconflow.base_url", "https://api.siliconflow.cn")
	v.SetDefault("ai.siliconflow.embed_model", "BAAI/bge-m3")
	v.SetDefault("ai.siliconflow.rerank_model", "BAAI/bge-reranker-v2-m3")

	// Chat
	v.SetDefault("chat.export_dir", "./data/conversations")
	v.SetDefault("chat.max_tokens", 2000)

	// Learn
	v.SetDefault("learn.explanations_dir", "./data/explanations")

	// Watcher
	v.SetDefault("watcher.extensions", []string{".md", ".txt", ".org"})
	v.SetDefault("watcher.debounce_sec", 2)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
