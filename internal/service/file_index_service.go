package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"unicode/utf8"

	"github.com/yuqie6/MindMirror/internal/watcher"
)

// 摘要只看文件开头这么多字节
const summarySampleBytes = 5000

// FileIndexService 把监控到的笔记文件写入记忆索引
// 配置了补全服务时附带一份 2-3 句的摘要
type FileIndexService struct {
	memory *MemoryService
	gen    Generator
}

// NewFileIndexService 创建文件索引服务，gen 可以为 nil
func NewFileIndexService(memory *MemoryService, gen Generator) *FileIndexService {
	return &FileIndexService{memory: memory, gen: gen}
}

// Run 消费文件变更直到通道关闭或 ctx 取消
func (s *FileIndexService) Run(ctx context.Context, events <-chan *watcher.FileChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-events:
			if !ok {
				return
			}
			s.IndexFile(ctx, change)
		}
	}
}

// IndexFile 索引单个文件，同一路径重复保存会覆盖旧文档
func (s *FileIndexService) IndexFile(ctx context.Context, change *watcher.FileChange) {
	if change == nil || change.Content == "" {
		return
	}

	summary := s.summarize(ctx, change)

	s.memory.IndexDocument(ctx, fileDocID(change.Path), change.Content, map[string]string{
		"type":    "file",
		"name":    change.Name,
		"path":    change.Path,
		"date":    change.ModTime.Format("2006-01-02"),
		"summary": summary,
	})
	slog.Debug("文件已索引", "file", change.Name, "summarized", summary != "")
}

// summarize 用模型生成简短摘要，失败或未配置时返回空串
func (s *FileIndexService) summarize(ctx context.Context, change *watcher.FileChange) string {
	if s.gen == nil || !s.gen.IsConfigured() {
		return ""
	}

	sample := change.Content
	if len(sample) > summarySampleBytes {
		cut := summarySampleBytes
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}
	prompt := fmt.Sprintf("用 2-3 句话总结这个文件 (%s):\n\n%s", change.Name, sample)

	summary, err := s.gen.Generate(ctx, prompt, "", 1024)
	if err != nil {
		slog.Warn("文件摘要生成失败", "file", change.Name, "error", err)
		return ""
	}
	return summary
}

// fileDocID 路径到稳定文档 ID
func fileDocID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("file_%x", h.Sum64())
}
