package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ClaudeClient Anthropic Messages API 客户端
type ClaudeClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// ClaudeConfig 配置
type ClaudeConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewClaudeClient 创建客户端
func NewClaudeClient(cfg *ClaudeConfig) *ClaudeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}

	return &ClaudeClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// MessageRequest 消息请求
type MessageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Message 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageResponse 消息响应
type MessageResponse struct {
	ID      string         `json:"id"`
	Content []ContentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}

// ContentBlock 内容块
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage 用量
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Generate 单轮补全
func (c *ClaudeClient) Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	return c.Chat(ctx, []Message{{Role: "user", Content: prompt}}, systemPrompt, maxTokens)
}

// Chat 发送多轮消息请求
func (c *ClaudeClient) Chat(ctx context.Context, messages []Message, systemPrompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	req := MessageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Claude API 错误", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("API 错误: %s", resp.Status)
	}

	var msgResp MessageResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("无响应内容")
	}

	slog.Debug("Claude API 调用成功",
		"input_tokens", msgResp.Usage.InputTokens,
		"output_tokens", msgResp.Usage.OutputTokens,
		"model", c.model,
	)

	return sb.String(), nil
}

// IsConfigured 检查是否已配置
func (c *ClaudeClient) IsConfigured() bool {
	return c.apiKey != ""
}

// ChatWithRetry 带重试的消息请求（指数退避）
func (c *ClaudeClient) ChatWithRetry(ctx context.Context, messages []Message, systemPrompt string, maxTokens, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Chat(ctx, messages, systemPrompt, maxTokens)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// 检查是否是可重试错误（网络错误、限流、5xx 错误）
		if !isRetryableError(err) {
			return "", err
		}

		// 指数退避：1s, 2s, 4s...
		backoff := time.Duration(1<<uint(i)) * time.Second
		slog.Warn("API 调用失败，准备重试", "attempt", i+1, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("达到最大重试次数 (%d): %w", maxRetries, lastErr)
}

// isRetryableError 判断是否是可重试错误
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// 网络错误、限流或 5xx 错误可重试
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "529")
}
