package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

func TestSkillRepositoryCreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	skill := &schema.Skill{Name: "Python", Category: "language", Difficulty: schema.DifficultyBeginner, Status: schema.SkillStatusActive}
	if err := repo.Create(ctx, skill); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if skill.ID == 0 {
		t.Fatalf("id not assigned")
	}

	got, err := repo.GetByID(ctx, skill.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Name != "Python" || got.Difficulty != schema.DifficultyBeginner {
		t.Fatalf("got=%+v", got)
	}
}

func TestSkillRepositoryGetByIDNotFound(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSkillRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestSkillRepositoryGetByNameMissingReturnsNil(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSkillRepository(db)

	got, err := repo.GetByName(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByName error: %v", err)
	}
	if got != nil {
		t.Fatalf("got=%+v, want nil", got)
	}
}

func TestSkillRepositoryExists(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	skill := &schema.Skill{Name: "Go", Status: schema.SkillStatusActive}
	if err := repo.Create(ctx, skill); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	ok, err := repo.Exists(ctx, skill.ID)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	ok, err = repo.Exists(ctx, 12345)
	if err != nil || ok {
		t.Fatalf("Exists(12345) = %v, %v", ok, err)
	}
}
