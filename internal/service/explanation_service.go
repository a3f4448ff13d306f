package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/yuqie6/MindMirror/internal/schema"
)

// ExplanationService 概念讲解：调模型生成讲解并按技能存成 markdown 文件
// 目录结构 {baseDir}/{skillID}_{技能名}/{主题}.md，目录在首次保存时才创建
type ExplanationService struct {
	skillRepo SkillRepository
	generator Generator
	baseDir   string
	now       func() time.Time
}

// NewExplanationService 创建讲解服务
func NewExplanationService(skillRepo SkillRepository, generator Generator, baseDir string) *ExplanationService {
	return &ExplanationService{
		skillRepo: skillRepo,
		generator: generator,
		baseDir:   baseDir,
		now:       time.Now,
	}
}

const explanationSystemPrompt = "你是一位耐心的编程导师，讲解概念时先给直觉再给细节，附上简短的代码示例。"

// Explain 生成一段讲解，不落盘；guidance 是可选的定制要求
func (s *ExplanationService) Explain(ctx context.Context, skillID int64, topic, guidance string) (string, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return "", err
	}
	if !s.generator.IsConfigured() {
		return "", fmt.Errorf("补全服务未配置")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "我正在学习「%s」（当前难度 %s），请讲解这个主题：%s\n", skill.Name, skill.Difficulty, topic)
	if guidance != "" {
		fmt.Fprintf(&sb, "\n额外要求: %s\n", guidance)
	}

	out, err := s.generator.Generate(ctx, sb.String(), explanationSystemPrompt, 4000)
	if err != nil {
		return "", fmt.Errorf("生成讲解失败: %w", err)
	}
	return out, nil
}

// Save 把讲解连同元数据头写入技能目录，返回文件路径
func (s *ExplanationService) Save(ctx context.Context, skillID int64, topic, guidance, content string) (string, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return "", err
	}

	dir := s.skillDir(skill)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建讲解目录失败: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", topic)
	fmt.Fprintf(&sb, "**技能:** %s\n", skill.Name)
	fmt.Fprintf(&sb, "**生成时间:** %s\n", s.now().Format("2006-01-02 15:04"))
	if guidance != "" {
		fmt.Fprintf(&sb, "**定制要求:** %s\n", guidance)
	}
	sb.WriteString("\n---\n\n")
	sb.WriteString(content)

	path := filepath.Join(dir, topicFilename(topic)+".md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("写入讲解失败: %w", err)
	}
	return path, nil
}

// Get 读取已保存的讲解；不存在时返回空串，不算错误
func (s *ExplanationService) Get(ctx context.Context, skillID int64, topic string) (string, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.skillDir(skill), topicFilename(topic)+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("读取讲解失败: %w", err)
	}
	return string(data), nil
}

// Exists 检查该主题的讲解是否已保存过
func (s *ExplanationService) Exists(ctx context.Context, skillID int64, topic string) (bool, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filepath.Join(s.skillDir(skill), topicFilename(topic)+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List 列出某技能已保存的讲解主题，按字典序
func (s *ExplanationService) List(ctx context.Context, skillID int64) ([]string, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.skillDir(skill))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取讲解目录失败: %w", err)
	}

	var topics []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		topic := strings.ReplaceAll(strings.TrimSuffix(name, ".md"), "_", " ")
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}

// skillDir 技能目录带上 ID 前缀，技能改名后旧目录仍可定位
func (s *ExplanationService) skillDir(skill *schema.Skill) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%d_%s", skill.ID, topicFilename(skill.Name)))
}

// topicFilename 把主题转成安全的文件名
// 小写、空格和连字符换下划线、去掉其余符号，最长 100 个字符
func topicFilename(topic string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(topic) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastUnderscore = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return firstRunes(strings.Trim(sb.String(), "_"), 100)
}
