package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yuqie6/MindMirror/internal/watcher"
)

func TestIndexFileWithSummary(t *testing.T) {
	vectors := newFakeVectorIndex(true)
	memory, _ := newTestMemoryService(t, vectors)
	gen := &fakeGenerator{configured: true, output: "这是一份部署笔记"}
	svc := NewFileIndexService(memory, gen)

	svc.IndexFile(context.Background(), &watcher.FileChange{
		Path:    "/notes/deploy.md",
		Name:    "deploy.md",
		Content: "kubectl apply 的各种坑",
		ModTime: time.Now(),
	})

	if len(vectors.docs) != 1 {
		t.Fatalf("docs=%d, want 1", len(vectors.docs))
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "deploy.md") {
		t.Fatalf("prompts=%v", gen.prompts)
	}
}

func TestIndexFileWithoutGenerator(t *testing.T) {
	vectors := newFakeVectorIndex(true)
	memory, _ := newTestMemoryService(t, vectors)
	svc := NewFileIndexService(memory, nil)

	svc.IndexFile(context.Background(), &watcher.FileChange{
		Path:    "/notes/a.txt",
		Name:    "a.txt",
		Content: "一些内容",
		ModTime: time.Now(),
	})

	if len(vectors.docs) != 1 {
		t.Fatalf("docs=%d, want 1 (索引不依赖摘要)", len(vectors.docs))
	}
}

func TestIndexFileSkipsEmpty(t *testing.T) {
	vectors := newFakeVectorIndex(true)
	memory, _ := newTestMemoryService(t, vectors)
	svc := NewFileIndexService(memory, nil)

	svc.IndexFile(context.Background(), &watcher.FileChange{Path: "/notes/empty.md", Name: "empty.md"})
	svc.IndexFile(context.Background(), nil)

	if len(vectors.docs) != 0 {
		t.Fatalf("docs=%d, want 0", len(vectors.docs))
	}
}

func TestFileDocIDStable(t *testing.T) {
	a := fileDocID("/notes/deploy.md")
	b := fileDocID("/notes/deploy.md")
	c := fileDocID("/notes/other.md")
	if a != b {
		t.Fatalf("同一路径应得到同一 ID: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("不同路径不应撞 ID: %s", a)
	}
	if !strings.HasPrefix(a, "file_") {
		t.Fatalf("id=%s", a)
	}
}
