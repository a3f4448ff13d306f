package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

type fakeGenerator struct {
	output     string
	err        error
	configured bool
	prompts    []string
}

func (f *fakeGenerator) IsConfigured() bool { return f.configured }
func (f *fakeGenerator) Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func TestGenerateRoadmap(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skillRepo := repository.NewSkillRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	ctx := context.Background()

	skill := &schema.Skill{Name: "Go", Status: schema.SkillStatusActive}
	if err := skillRepo.Create(ctx, skill); err != nil {
		t.Fatalf("create skill: %v", err)
	}

	gen := &fakeGenerator{configured: true, output: `
CHALLENGE: Echo server
DIFFICULTY: beginner
HOURS: 3
DESCRIPTION: 一个最小的 TCP echo 服务
SKILLS: net, goroutine
PREREQUISITES: none

CHALLENGE: TCP proxy
DIFFICULTY: intermediate
HOURS: 8
DESCRIPTION: 双向转发的代理
SKILLS: net, io
PREREQUISITES: Echo server
`}

	svc := NewRoadmapService(skillRepo, challengeRepo, gen)
	created, err := svc.GenerateRoadmap(ctx, skill.ID, "会写基础语法", "能独立写网络服务", "每周 5 小时")
	if err != nil {
		t.Fatalf("GenerateRoadmap error: %v", err)
	}
	if created != 2 {
		t.Fatalf("created=%d, want 2", created)
	}

	challenges, err := challengeRepo.List(ctx, skill.ID, "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(challenges) != 2 {
		t.Fatalf("challenges=%d, want 2", len(challenges))
	}
	for _, c := range challenges {
		if c.Status != schema.ChallengeNotStarted {
			t.Errorf("%s status=%q", c.Title, c.Status)
		}
		if c.Title == "Echo server" {
			if len(c.Unlocks) != 1 || c.Unlocks[0] != "TCP proxy" {
				t.Errorf("unlocks=%v", c.Unlocks)
			}
			if len(c.Prerequisites) != 0 {
				t.Errorf("prerequisites=%v, want empty", c.Prerequisites)
			}
		}
	}

	updated, err := skillRepo.GetByID(ctx, skill.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !updated.RoadmapGenerated {
		t.Error("RoadmapGenerated not set")
	}
	if updated.Goals != "能独立写网络服务" || updated.Timeline != "每周 5 小时" {
		t.Errorf("skill metadata=%q/%q", updated.Goals, updated.Timeline)
	}
}

func TestGenerateRoadmapZeroParsed(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skillRepo := repository.NewSkillRepository(db)
	ctx := context.Background()

	skill := &schema.Skill{Name: "Rust", Status: schema.SkillStatusActive}
	if err := skillRepo.Create(ctx, skill); err != nil {
		t.Fatalf("create skill: %v", err)
	}

	gen := &fakeGenerator{configured: true, output: "抱歉，我这次没按格式输出。"}
	svc := NewRoadmapService(skillRepo, repository.NewChallengeRepository(db), gen)

	// 模型输出不合格式不算错误，只是创建 0 条
	created, err := svc.GenerateRoadmap(ctx, skill.ID, "", "", "")
	if err != nil {
		t.Fatalf("GenerateRoadmap error: %v", err)
	}
	if created != 0 {
		t.Fatalf("created=%d, want 0", created)
	}

	// 创建 0 条时技能元数据保持原样
	updated, err := skillRepo.GetByID(ctx, skill.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if updated.RoadmapGenerated {
		t.Error("RoadmapGenerated set without any challenges")
	}
}

func TestGenerateRoadmapSkillNotFound(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewRoadmapService(
		repository.NewSkillRepository(db),
		repository.NewChallengeRepository(db),
		&fakeGenerator{configured: true},
	)

	if _, err := svc.GenerateRoadmap(context.Background(), 99, "", "", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}
