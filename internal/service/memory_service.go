package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuqie6/MindMirror/internal/schema"
)

const memoryCollection = "memories"

// MemoryService 长期记忆服务：事实、偏好、目标与语义检索
type MemoryService struct {
	factRepo FactRepository
	prefRepo PreferenceRepository
	goalRepo GoalRepository
	vectors  VectorIndex
}

// NewMemoryService 创建记忆服务
func NewMemoryService(factRepo FactRepository, prefRepo PreferenceRepository, goalRepo GoalRepository, vectors VectorIndex) *MemoryService {
	return &MemoryService{
		factRepo: factRepo,
		prefRepo: prefRepo,
		goalRepo: goalRepo,
		vectors:  vectors,
	}
}

// RememberFact 记住一条事实并写入向量索引
func (s *MemoryService) RememberFact(ctx context.Context, content, contextNote string) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, fmt.Errorf("事实内容不能为空")
	}

	fact := &schema.Fact{
		Entity:  extractEntity(content),
		Content: content,
		Context: contextNote,
	}
	if err := s.factRepo.Create(ctx, fact); err != nil {
		return 0, err
	}

	s.indexMemory(ctx, fmt.Sprintf("fact_%d", fact.ID), content, map[string]string{
		"type":   "fact",
		"entity": fact.Entity,
	})
	return fact.ID, nil
}

// SetPreference 记录用户偏好（同 key 覆盖）
func (s *MemoryService) SetPreference(ctx context.Context, key, value, description string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("偏好键不能为空")
	}
	return s.prefRepo.Upsert(ctx, &schema.Preference{
		Key:         key,
		Value:       value,
		Description: description,
	})
}

// GetPreference 读取偏好，未设置返回空串
func (s *MemoryService) GetPreference(ctx context.Context, key string) (string, error) {
	return s.prefRepo.Get(ctx, strings.TrimSpace(strings.ToLower(key)))
}

// AddGoal 新建目标
func (s *MemoryService) AddGoal(ctx context.Context, content, deadline string) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, fmt.Errorf("目标内容不能为空")
	}

	g := &schema.Goal{
		Content:  content,
		Deadline: deadline,
		Status:   schema.GoalStatusActive,
	}
	if err := s.goalRepo.Create(ctx, g); err != nil {
		return 0, err
	}

	s.indexMemory(ctx, fmt.Sprintf("goal_%d", g.ID), content, map[string]string{
		"type": "goal",
	})
	return g.ID, nil
}

// ActiveGoals 进行中的目标
func (s *MemoryService) ActiveGoals(ctx context.Context) ([]schema.Goal, error) {
	return s.goalRepo.Active(ctx)
}

// CompleteGoal 完成目标
func (s *MemoryService) CompleteGoal(ctx context.Context, id int64) error {
	return s.goalRepo.Complete(ctx, id)
}

// RecentFacts 最近记住的事实
func (s *MemoryService) RecentFacts(ctx context.Context, limit int) ([]schema.Fact, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.factRepo.Recent(ctx, limit)
}

// FactsAbout 关于某个实体的全部事实
func (s *MemoryService) FactsAbout(ctx context.Context, entity string) ([]schema.Fact, error) {
	return s.factRepo.AboutEntity(ctx, strings.ToLower(strings.TrimSpace(entity)))
}

// MemoryHit 记忆检索结果
type MemoryHit struct {
	Content string
	Type    string
}

// Recall 语义检索记忆；向量库不可用或出错时降级到关键词检索
func (s *MemoryService) Recall(ctx context.Context, query string, topK int) ([]MemoryHit, error) {
	if topK <= 0 {
		topK = 5
	}

	if s.vectors != nil && s.vectors.IsConfigured() {
		hits, err := s.vectors.Query(ctx, memoryCollection, query, topK)
		if err == nil {
			out := make([]MemoryHit, len(hits))
			for i, h := range hits {
				out[i] = MemoryHit{Content: h.Document, Type: h.Metadata["type"]}
			}
			return out, nil
		}
		slog.Warn("向量检索失败，降级到关键词检索", "error", err)
	}

	facts, err := s.factRepo.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	out := make([]MemoryHit, len(facts))
	for i, f := range facts {
		out[i] = MemoryHit{Content: f.Content, Type: "fact"}
	}
	return out, nil
}

// FileHit 文件检索结果
type FileHit struct {
	Preview string
	Path    string
	Summary string
}

// SearchFiles 语义检索已索引的文件，正文截断为 500 字预览
// 向量库不可用时返回空结果
func (s *MemoryService) SearchFiles(ctx context.Context, query string, topK int) ([]FileHit, error) {
	if topK <= 0 {
		topK = 3
	}
	if s.vectors == nil || !s.vectors.IsConfigured() {
		slog.Warn("嵌入服务未配置，文件检索不可用")
		return nil, nil
	}

	// 多取一些再按类型过滤，记忆和文件混在同一个集合里
	hits, err := s.vectors.Query(ctx, memoryCollection, query, topK*3)
	if err != nil {
		return nil, fmt.Errorf("文件检索失败: %w", err)
	}

	out := make([]FileHit, 0, topK)
	for _, h := range hits {
		if h.Metadata["type"] != "file" {
			continue
		}
		out = append(out, FileHit{
			Preview: truncateRunes(h.Document, 500),
			Path:    h.Metadata["path"],
			Summary: h.Metadata["summary"],
		})
		if len(out) >= topK {
			break
		}
	}
	return out, nil
}

// IndexDocument 将任意文本写入记忆索引（对话片段、文件内容）
func (s *MemoryService) IndexDocument(ctx context.Context, id, text string, metadata map[string]string) {
	s.indexMemory(ctx, id, text, metadata)
}

// indexMemory 向量索引失败只告警，不影响主流程
func (s *MemoryService) indexMemory(ctx context.Context, id, text string, metadata map[string]string) {
	if s.vectors == nil || !s.vectors.IsConfigured() {
		return
	}
	if err := s.vectors.Upsert(ctx, memoryCollection, id, text, metadata); err != nil {
		slog.Warn("写入记忆索引失败", "id", id, "error", err)
	}
}

// entityStopwords 提取实体时跳过的虚词
var entityStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "my": {}, "is": {}, "are": {}, "was": {},
	"i": {}, "that": {}, "this": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"user": {}, "likes": {}, "wants": {}, "has": {}, "have": {},
}

// extractEntity 从事实文本中猜一个主题实体（粗糙启发式，够用即可）
func extractEntity(content string) string {
	words := strings.Fields(content)
	for _, w := range words {
		w = strings.Trim(strings.ToLower(w), ".,!?:;\"'()")
		if len([]rune(w)) < 2 {
			continue
		}
		if _, skip := entityStopwords[w]; skip {
			continue
		}
		return w
	}
	return "general"
}
