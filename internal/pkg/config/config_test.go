package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// 不给路径且当前目录没有配置文件时，走默认值
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.App.Name != "mind-cli" {
		t.Errorf("App.Name=%q", cfg.App.Name)
	}
	if cfg.Chat.MaxTokens != 2000 {
		t.Errorf("Chat.MaxTokens=%d", cfg.Chat.MaxTokens)
	}
	if cfg.Learn.ExplanationsDir == "" {
		t.Error("Learn.ExplanationsDir empty")
	}
}

func TestLoadExpandsEnvPlaceholder(t *testing.T) {
	t.Setenv("TEST_CLAUDE_KEY", "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "ai:\n  claude:\n    api_key: ${TEST_CLAUDE_KEY}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AI.Claude.APIKey != "sk-test" {
		t.Errorf("APIKey=%q, want sk-test", cfg.AI.Claude.APIKey)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config", "config.yaml")

	cfg := &Config{}
	cfg.App.Name = "mind-cli"
	cfg.App.LogLevel = "debug"
	cfg.Storage.DBPath = "/tmp/mind.db"

	if err := WriteFile(path, cfg); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.App.LogLevel != "debug" {
		t.Errorf("LogLevel=%q", loaded.App.LogLevel)
	}
	if loaded.Storage.DBPath != "/tmp/mind.db" {
		t.Errorf("DBPath=%q", loaded.Storage.DBPath)
	}
}
