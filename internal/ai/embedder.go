package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SiliconFlowClient SiliconFlow API 客户端（嵌入与重排）
type SiliconFlowClient struct {
	apiKey      string
	baseURL     string
	embedModel  string
	rerankModel string
	client      *http.Client
}

// SiliconFlowConfig 配置
type SiliconFlowConfig struct {
	APIKey      string
	BaseURL     string
	EmbedModel  string
	RerankModel string
}

// NewSiliconFlowClient 创建客户端
func NewSiliconFlowClient(cfg *SiliconFlowConfig) *SiliconFlowClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.siliconflow.cn"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "BAAI/bge-m3"
	}
	if cfg.RerankModel == "" {
		cfg.RerankModel = "BAAI/bge-reranker-v2-m3"
	}

	return &SiliconFlowClient{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		embedModel:  cfg.EmbedModel,
		rerankModel: cfg.RerankModel,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured 检查是否已配置
func (c *SiliconFlowClient) IsConfigured() bool {
	return c.apiKey != ""
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed 批量生成文本嵌入
func (c *SiliconFlowClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: c.embedModel, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	respBody, err := c.post(ctx, "/v1/embeddings", body)
	if err != nil {
		return nil, err
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	embeddings := make([][]float32, len(embResp.Data))
	for _, d := range embResp.Data {
		if d.Index >= 0 && d.Index < len(embeddings) {
			embeddings[d.Index] = d.Embedding
		}
	}
	return embeddings, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// RerankResult 重排结果
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []RerankResult `json:"results"`
}

// Rerank 对候选文档按与查询的相关性重排
func (c *SiliconFlowClient) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	body, err := json.Marshal(rerankRequest{
		Model:     c.rerankModel,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	respBody, err := c.post(ctx, "/v1/rerank", body)
	if err != nil {
		return nil, err
	}

	var rrResp rerankResponse
	if err := json.Unmarshal(respBody, &rrResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return rrResp.Results, nil
}

func (c *SiliconFlowClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("SiliconFlow API 错误", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("API 错误: %s", resp.Status)
	}
	return respBody, nil
}
