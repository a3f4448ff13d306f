package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

func TestFactRepositorySearchAndEntity(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewFactRepository(db)
	ctx := context.Background()

	facts := []*schema.Fact{
		{Entity: "user", Content: "喜欢早上写代码"},
		{Entity: "project", Content: "MindMirror 用 SQLite 存储"},
		{Entity: "user", Content: "住在上海"},
	}
	for _, f := range facts {
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	hits, err := repo.Search(ctx, "SQLite", 10)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(hits) != 1 || hits[0].Entity != "project" {
		t.Fatalf("hits=%v", hits)
	}

	userFacts, err := repo.AboutEntity(ctx, "user")
	if err != nil {
		t.Fatalf("AboutEntity error: %v", err)
	}
	if len(userFacts) != 2 {
		t.Fatalf("len=%d, want 2", len(userFacts))
	}
}

func TestPreferenceRepositoryUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &schema.Preference{Key: "writing_style", Value: "简洁"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	// 同 key 覆盖而不是报错
	if err := repo.Upsert(ctx, &schema.Preference{Key: "writing_style", Value: "正式"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	v, err := repo.Get(ctx, "writing_style")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if v != "正式" {
		t.Fatalf("v=%q, want 正式", v)
	}

	missing, err := repo.Get(ctx, "no_such_key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if missing != "" {
		t.Fatalf("missing=%q, want empty", missing)
	}
}

func TestGoalRepositoryComplete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewGoalRepository(db)
	ctx := context.Background()

	g := &schema.Goal{Content: "三个月内学完 Go 并发", Status: schema.GoalStatusActive}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := repo.Complete(ctx, g.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	active, err := repo.Active(ctx)
	if err != nil {
		t.Fatalf("Active error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active=%v", active)
	}

	// 重复完成不存在的目标
	if err := repo.Complete(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}
