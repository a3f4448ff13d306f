package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/MindMirror/internal/ai"
)

// 每积累这么多条消息就落一次盘
const autosaveEvery = 10

// ChatService 记忆增强对话：系统提示注入事实/目标/偏好，对话定期落盘并建索引
type ChatService struct {
	chatter   Chatter
	memory    *MemoryService
	exportDir string
	maxTokens int

	conversationID string
	startedAt      time.Time
	messages       []ai.Message
	sinceSave      int

	saveOnce sync.Once
}

// NewChatService 创建对话服务，每个实例对应一场对话
func NewChatService(chatter Chatter, memory *MemoryService, exportDir string, maxTokens int) *ChatService {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &ChatService{
		chatter:        chatter,
		memory:         memory,
		exportDir:      exportDir,
		maxTokens:      maxTokens,
		conversationID: uuid.NewString(),
		startedAt:      time.Now(),
	}
}

// Send 发送一条用户消息，返回助手回复
// "remember that" 开头的输入直接写入记忆，不走模型
func (s *ChatService) Send(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("消息不能为空")
	}

	if fact, ok := extractRememberDirective(input); ok {
		if _, err := s.memory.RememberFact(ctx, fact, "用户在对话中要求记住"); err != nil {
			return "", err
		}
		reply := "好的，我记住了: " + fact
		s.append(ai.Message{Role: "user", Content: input})
		s.append(ai.Message{Role: "assistant", Content: reply})
		s.maybeAutosave(ctx)
		return reply, nil
	}

	if !s.chatter.IsConfigured() {
		return "", fmt.Errorf("补全服务未配置")
	}

	system := s.buildSystemPrompt(ctx, input)
	s.append(ai.Message{Role: "user", Content: input})

	reply, err := s.chatter.Chat(ctx, s.messages, system, s.maxTokens)
	if err != nil {
		// 失败的轮次不留在历史里
		s.messages = s.messages[:len(s.messages)-1]
		s.sinceSave--
		return "", fmt.Errorf("对话失败: %w", err)
	}

	s.append(ai.Message{Role: "assistant", Content: reply})
	s.maybeAutosave(ctx)
	return reply, nil
}

// buildSystemPrompt 注入长期记忆：近期事实、进行中的目标、写作偏好、相关记忆
func (s *ChatService) buildSystemPrompt(ctx context.Context, input string) string {
	var sb strings.Builder
	sb.WriteString("你是一位了解用户长期情况的私人助手，回答时自然地利用下面的背景信息，不要逐条复述。\n")

	if facts, err := s.memory.RecentFacts(ctx, 3); err == nil && len(facts) > 0 {
		sb.WriteString("\n关于用户的事实:\n")
		for _, f := range facts {
			sb.WriteString("- " + f.Content + "\n")
		}
	}

	if goals, err := s.memory.ActiveGoals(ctx); err == nil && len(goals) > 0 {
		sb.WriteString("\n进行中的目标:\n")
		for i, g := range goals {
			if i >= 3 {
				break
			}
			sb.WriteString("- " + g.Content + "\n")
		}
	}

	if style, err := s.memory.GetPreference(ctx, "writing_style"); err == nil && style != "" {
		sb.WriteString("\n回复风格偏好: " + style + "\n")
	}

	if hits, err := s.memory.Recall(ctx, input, 3); err == nil && len(hits) > 0 {
		sb.WriteString("\n可能相关的记忆:\n")
		for _, h := range hits {
			sb.WriteString("- " + truncateRunes(h.Content, 200) + "\n")
		}
	}

	return sb.String()
}

func (s *ChatService) append(m ai.Message) {
	s.messages = append(s.messages, m)
	s.sinceSave++
}

func (s *ChatService) maybeAutosave(ctx context.Context) {
	if s.sinceSave < autosaveEvery {
		return
	}
	if err := s.Save(ctx); err != nil {
		slog.Warn("对话自动保存失败", "error", err)
		return
	}
	s.sinceSave = 0
}

// Save 把当前对话导出为文本文件并写入记忆索引
// 同一场对话反复保存会覆盖同一个文件
func (s *ChatService) Save(ctx context.Context) error {
	if len(s.messages) == 0 {
		return nil
	}

	dir := filepath.Join(s.exportDir, s.startedAt.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建对话目录失败: %w", err)
	}

	topic := s.topic()
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", s.startedAt.Format("150405"), topic))

	var sb strings.Builder
	fmt.Fprintf(&sb, "对话时间: %s\n\n", s.startedAt.Format("2006-01-02 15:04:05"))
	for _, m := range s.messages {
		fmt.Fprintf(&sb, "[%s] %s\n\n", m.Role, m.Content)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("写入对话文件失败: %w", err)
	}

	s.memory.IndexDocument(ctx, "conv_"+s.conversationID, sb.String(), map[string]string{
		"type":  "conversation",
		"date":  s.startedAt.Format("2006-01-02"),
		"topic": topic,
	})

	slog.Debug("对话已保存", "path", path, "messages", len(s.messages))
	return nil
}

// Close 进程退出前的兜底保存，多次调用只保存一次
func (s *ChatService) Close(ctx context.Context) error {
	var err error
	s.saveOnce.Do(func() {
		err = s.Save(ctx)
	})
	return err
}

// MessageCount 当前对话的消息数
func (s *ChatService) MessageCount() int {
	return len(s.messages)
}

// topic 从第一条用户消息提炼文件名：去掉疑问词，最多取 5 个词
func (s *ChatService) topic() string {
	for _, m := range s.messages {
		if m.Role != "user" {
			continue
		}
		t := strings.ToLower(firstRunes(m.Content, 50))
		for _, w := range []string{"can you", "help me", "what", "how", "why", "when", "where", "please"} {
			t = strings.ReplaceAll(t, w, " ")
		}
		words := strings.Fields(t)
		if len(words) > 5 {
			words = words[:5]
		}
		topic := sanitizeFilename(strings.Join(words, "_"))
		topic = strings.Trim(topic, " ,.?!:_")
		if topic != "" {
			return truncateForFilename(topic, 40)
		}
	}
	return "untitled"
}

// sanitizeFilename 去掉文件名里不安全的字符
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r':
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

func truncateForFilename(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// extractRememberDirective 识别"记住 X"类输入，返回要记住的内容
func extractRememberDirective(input string) (string, bool) {
	lower := strings.ToLower(input)
	for _, prefix := range []string{"remember that ", "remember: ", "记住，", "记住:", "记住 "} {
		if strings.HasPrefix(lower, prefix) {
			fact := strings.TrimSpace(input[len(prefix):])
			if fact != "" {
				return fact, true
			}
		}
	}
	return "", false
}
