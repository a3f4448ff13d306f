package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/MindMirror/internal/ai"
)

// VectorStore 基于 chromem-go 的本地向量库，嵌入走 SiliconFlow
type VectorStore struct {
	db          *chromem.DB
	sfClient    *ai.SiliconFlowClient
	storagePath string
}

// VectorStoreConfig 配置
type VectorStoreConfig struct {
	StoragePath string // 向量数据库存储路径
}

// NewVectorStore 创建向量库
func NewVectorStore(sfClient *ai.SiliconFlowClient, cfg *VectorStoreConfig) (*VectorStore, error) {
	if cfg == nil {
		cfg = &VectorStoreConfig{}
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "./data/vectors"
	}

	// 确保目录存在
	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return nil, fmt.Errorf("创建向量存储目录失败: %w", err)
	}

	db, err := chromem.NewPersistentDB(cfg.StoragePath, false)
	if err != nil {
		return nil, fmt.Errorf("创建向量数据库失败: %w", err)
	}

	return &VectorStore{
		db:          db,
		sfClient:    sfClient,
		storagePath: cfg.StoragePath,
	}, nil
}

// IsConfigured 嵌入服务是否可用；不可用时调用方降级到关键词检索
func (s *VectorStore) IsConfigured() bool {
	return s.sfClient != nil && s.sfClient.IsConfigured()
}

// Upsert 写入或覆盖一条文档
func (s *VectorStore) Upsert(ctx context.Context, collection, id, document string, metadata map[string]string) error {
	if !s.IsConfigured() {
		slog.Debug("嵌入服务未配置，跳过索引", "collection", collection)
		return nil
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return fmt.Errorf("创建 collection 失败: %w", err)
	}

	embeddings, err := s.sfClient.Embed(ctx, []string{document})
	if err != nil {
		return fmt.Errorf("生成嵌入失败: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("嵌入结果为空")
	}

	doc := chromem.Document{
		ID:        id,
		Content:   document,
		Embedding: embeddings[0],
		Metadata:  metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}
	return nil
}

// Query 查询相关文档，命中后用 Reranker 重排
func (s *VectorStore) Query(ctx context.Context, collection, text string, topK int) ([]VectorHit, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("嵌入服务未配置")
	}
	if topK <= 0 {
		topK = 5
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}
	if col.Count() == 0 {
		return nil, nil
	}
	if topK > col.Count() {
		topK = col.Count()
	}

	queryEmb, err := s.sfClient.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	if len(queryEmb) == 0 {
		return nil, fmt.Errorf("查询嵌入为空")
	}

	results, err := col.QueryEmbedding(ctx, queryEmb[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Content
	}

	reranked, err := s.sfClient.Rerank(ctx, text, docs, topK)
	if err != nil {
		slog.Warn("重排失败，使用原始结果", "error", err)
		hits := make([]VectorHit, len(results))
		for i, r := range results {
			hits[i] = VectorHit{Document: r.Content, Metadata: r.Metadata}
		}
		return hits, nil
	}

	hits := make([]VectorHit, 0, len(reranked))
	for _, rr := range reranked {
		if rr.Index >= 0 && rr.Index < len(results) {
			hits = append(hits, VectorHit{
				Document: results[rr.Index].Content,
				Metadata: results[rr.Index].Metadata,
			})
		}
	}
	return hits, nil
}

// StoragePath 向量库的绝对路径
func (s *VectorStore) StoragePath() string {
	abs, _ := filepath.Abs(s.storagePath)
	return abs
}
