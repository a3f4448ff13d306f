package service

import (
	"context"
	"testing"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
)

func TestLibraryCategoryForSkill(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Python 后端", "python"},
		{"Data Analysis", "data_analysis"},
		{"机器学习入门", "machine_learning"},
		{"IoT Platforms", "digitalization"},
		{"Rust", ""},
	}
	for _, c := range cases {
		if got := LibraryCategoryForSkill(c.name); got != c.want {
			t.Errorf("LibraryCategoryForSkill(%q)=%q, want %q", c.name, got, c.want)
		}
	}
}

func TestLibraryChallengesFilter(t *testing.T) {
	all := LibraryChallenges("", "")
	if len(all) == 0 {
		t.Fatal("empty library")
	}

	py := LibraryChallenges("python", "")
	if len(py) == 0 {
		t.Fatal("no python challenges")
	}
	if len(py) >= len(all) {
		t.Fatalf("category filter not applied: %d >= %d", len(py), len(all))
	}

	for _, c := range LibraryChallenges("python", schema.DifficultyBeginner) {
		if c.Difficulty != schema.DifficultyBeginner {
			t.Errorf("%s difficulty=%s", c.Title, c.Difficulty)
		}
	}

	if got := LibraryChallenges("no_such_category", ""); len(got) != 0 {
		t.Fatalf("unknown category returned %d entries", len(got))
	}
}

func TestSearchLibrary(t *testing.T) {
	hits := SearchLibrary("pandas")
	if len(hits) == 0 {
		t.Fatal("no hits for pandas")
	}
	for _, h := range hits {
		found := false
		for _, s := range h.SkillsTaught {
			if s == "pandas" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s matched without pandas in skills", h.Title)
		}
	}

	if hits := SearchLibrary("不存在的关键词xyz"); len(hits) != 0 {
		t.Fatalf("unexpected hits: %d", len(hits))
	}
}

func TestStartLibraryChallenge(t *testing.T) {
	svc, db, skillID := newTestChallengeService(t)
	ctx := context.Background()

	entry := LibraryChallenges("python", "")[0]
	id, err := svc.StartLibraryChallenge(ctx, skillID, entry)
	if err != nil {
		t.Fatalf("StartLibraryChallenge error: %v", err)
	}

	got, err := repository.NewChallengeRepository(db).GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Title != entry.Title {
		t.Errorf("title=%q, want %q", got.Title, entry.Title)
	}
	if got.Status != schema.ChallengeInProgress {
		t.Errorf("status=%q, want in_progress", got.Status)
	}
	if len(got.SkillsTaught) != len(entry.SkillsTaught) {
		t.Errorf("skills_taught=%v", got.SkillsTaught)
	}
}
