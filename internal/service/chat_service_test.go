package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuqie6/MindMirror/internal/ai"
)

type fakeChatter struct {
	reply      string
	err        error
	configured bool
	systems    []string
	calls      int
}

func (f *fakeChatter) IsConfigured() bool { return f.configured }
func (f *fakeChatter) Chat(ctx context.Context, messages []ai.Message, systemPrompt string, maxTokens int) (string, error) {
	f.calls++
	f.systems = append(f.systems, systemPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestChatService(t *testing.T, chatter Chatter) (*ChatService, *MemoryService) {
	t.Helper()
	memory, _ := newTestMemoryService(t, newFakeVectorIndex(false))
	return NewChatService(chatter, memory, t.TempDir(), 0), memory
}

func TestSendInjectsMemoriesIntoSystemPrompt(t *testing.T) {
	chatter := &fakeChatter{reply: "好的", configured: true}
	svc, memory := newTestChatService(t, chatter)
	ctx := context.Background()

	if _, err := memory.RememberFact(ctx, "user works as a data engineer", ""); err != nil {
		t.Fatalf("RememberFact error: %v", err)
	}
	if _, err := memory.AddGoal(ctx, "learn distributed systems", ""); err != nil {
		t.Fatalf("AddGoal error: %v", err)
	}
	if err := memory.SetPreference(ctx, "writing_style", "简洁直接", ""); err != nil {
		t.Fatalf("SetPreference error: %v", err)
	}

	reply, err := svc.Send(ctx, "推荐点学习资料")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if reply != "好的" {
		t.Fatalf("reply=%q", reply)
	}

	if len(chatter.systems) != 1 {
		t.Fatalf("calls=%d, want 1", len(chatter.systems))
	}
	system := chatter.systems[0]
	for _, want := range []string{"data engineer", "distributed systems", "简洁直接"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system)
		}
	}
}

func TestSendRememberDirectiveSkipsModel(t *testing.T) {
	chatter := &fakeChatter{configured: true}
	svc, memory := newTestChatService(t, chatter)
	ctx := context.Background()

	reply, err := svc.Send(ctx, "remember that my cat is called Miso")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !strings.Contains(reply, "my cat is called Miso") {
		t.Fatalf("reply=%q", reply)
	}
	if chatter.calls != 0 {
		t.Fatalf("model called %d times, want 0", chatter.calls)
	}

	facts, err := memory.RecentFacts(ctx, 5)
	if err != nil {
		t.Fatalf("RecentFacts error: %v", err)
	}
	if len(facts) != 1 || facts[0].Content != "my cat is called Miso" {
		t.Fatalf("facts=%v", facts)
	}
}

func TestSendUnconfigured(t *testing.T) {
	svc, _ := newTestChatService(t, &fakeChatter{configured: false})

	if _, err := svc.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when chatter unconfigured")
	}
}

func TestAutosaveEveryTenMessages(t *testing.T) {
	chatter := &fakeChatter{reply: "ok", configured: true}
	memory, _ := newTestMemoryService(t, newFakeVectorIndex(false))
	dir := t.TempDir()
	svc := NewChatService(chatter, memory, dir, 0)
	ctx := context.Background()

	// 4 轮 = 8 条消息，还没到落盘门槛
	for i := 0; i < 4; i++ {
		if _, err := svc.Send(ctx, "hello"); err != nil {
			t.Fatalf("Send error: %v", err)
		}
	}
	if files := listConversationFiles(t, dir); len(files) != 0 {
		t.Fatalf("files=%v, want none before threshold", files)
	}

	// 第 5 轮满 10 条，自动保存
	if _, err := svc.Send(ctx, "hello again"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	files := listConversationFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("files=%v, want 1", files)
	}

	content, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(content), "[user] hello") || !strings.Contains(string(content), "[assistant] ok") {
		t.Fatalf("export content:\n%s", content)
	}
}

func TestCloseSavesOnce(t *testing.T) {
	chatter := &fakeChatter{reply: "ok", configured: true}
	memory, _ := newTestMemoryService(t, newFakeVectorIndex(false))
	dir := t.TempDir()
	svc := NewChatService(chatter, memory, dir, 0)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "quick question"); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if err := svc.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if files := listConversationFiles(t, dir); len(files) != 1 {
		t.Fatalf("files=%v, want 1", files)
	}
}

func listConversationFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return files
}
