package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

func TestItemRepositoryDueOrderingAndCutoff(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	repo := NewItemRepository(db)
	ctx := context.Background()
	now := time.Now()

	skill := mustCreateSkill(t, skills, "Python")

	past1 := now.Add(-48 * time.Hour)
	past2 := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	items := []*schema.LearningItem{
		{SkillID: skill.ID, ItemType: schema.ItemTypeConcept, Answer: "later", NextReview: &past2, ConfidenceLevel: 2},
		{SkillID: skill.ID, ItemType: schema.ItemTypeConcept, Answer: "oldest", NextReview: &past1, ConfidenceLevel: 4},
		{SkillID: skill.ID, ItemType: schema.ItemTypeConcept, Answer: "future", NextReview: &future, ConfidenceLevel: 1},
	}
	for _, it := range items {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	due, err := repo.Due(ctx, skill.ID, 10, now)
	if err != nil {
		t.Fatalf("Due error: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("len(due)=%d, want 2", len(due))
	}
	// next_review 升序：最久未复习的在前
	if due[0].Answer != "oldest" || due[1].Answer != "later" {
		t.Fatalf("order = %s, %s", due[0].Answer, due[1].Answer)
	}
	for _, it := range due {
		if it.NextReview != nil && it.NextReview.After(now) {
			t.Fatalf("future item %q returned as due", it.Answer)
		}
	}
}

func TestItemRepositoryDueSkipsArchivedSkills(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	repo := NewItemRepository(db)
	ctx := context.Background()
	now := time.Now()

	archived := &schema.Skill{Name: "Old", Status: schema.SkillStatusArchived}
	if err := skills.Create(ctx, archived); err != nil {
		t.Fatalf("create skill: %v", err)
	}
	active := mustCreateSkill(t, skills, "Active")

	// next_review 为空的条目视为到期
	if err := repo.Create(ctx, &schema.LearningItem{SkillID: archived.ID, ItemType: schema.ItemTypeFact, Answer: "hidden"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, &schema.LearningItem{SkillID: active.ID, ItemType: schema.ItemTypeFact, Answer: "visible"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	due, err := repo.Due(ctx, 0, 10, now)
	if err != nil {
		t.Fatalf("Due error: %v", err)
	}
	if len(due) != 1 || due[0].Answer != "visible" {
		t.Fatalf("due=%v", due)
	}
}

func TestItemRepositorySearch(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	skill := mustCreateSkill(t, skills, "Go")

	if err := repo.Create(ctx, &schema.LearningItem{SkillID: skill.ID, ItemType: schema.ItemTypeQA, Question: "什么是 goroutine", Answer: "轻量级线程", Tags: "concurrency"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, &schema.LearningItem{SkillID: skill.ID, ItemType: schema.ItemTypeFact, Answer: "unrelated"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	hits, err := repo.Search(ctx, "goroutine", 0, 20)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(hits) != 1 || hits[0].Question != "什么是 goroutine" {
		t.Fatalf("hits=%v", hits)
	}
}

func TestItemRepositoryStatsForSkill(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	skill := mustCreateSkill(t, skills, "Rust")

	if err := repo.Create(ctx, &schema.LearningItem{SkillID: skill.ID, ItemType: schema.ItemTypeConcept, Answer: "a", ConfidenceLevel: 2, TimesReviewed: 4, TimesCorrect: 3}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, &schema.LearningItem{SkillID: skill.ID, ItemType: schema.ItemTypeConcept, Answer: "b", ConfidenceLevel: 4, TimesReviewed: 2, TimesCorrect: 2}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	stats, err := repo.StatsForSkill(ctx, skill.ID)
	if err != nil {
		t.Fatalf("StatsForSkill error: %v", err)
	}
	if stats.TotalItems != 2 || stats.AvgConfidence != 3 || stats.TotalCorrect != 5 || stats.TotalReviews != 6 {
		t.Fatalf("stats=%+v", stats)
	}
}
