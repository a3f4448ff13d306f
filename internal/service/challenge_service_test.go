package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
	"gorm.io/gorm"
)

func newTestChallengeService(t *testing.T) (*ChallengeService, *gorm.DB, int64) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	skillRepo := repository.NewSkillRepository(db)
	svc := NewChallengeService(
		repository.NewChallengeRepository(db),
		repository.NewObstacleRepository(db),
		repository.NewEvidenceRepository(db),
		skillRepo,
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	skill := &schema.Skill{Name: "Go", Status: schema.SkillStatusActive}
	if err := skillRepo.Create(context.Background(), skill); err != nil {
		t.Fatalf("create skill: %v", err)
	}
	return svc, db, skill.ID
}

func TestStartChallengeMissingReturnsFalse(t *testing.T) {
	svc, _, _ := newTestChallengeService(t)

	started, err := svc.StartChallenge(context.Background(), 404)
	if err != nil {
		t.Fatalf("StartChallenge error: %v", err)
	}
	if started {
		t.Fatal("started=true for missing challenge")
	}
}

func TestChallengeLifecycle(t *testing.T) {
	svc, db, skillID := newTestChallengeService(t)
	ctx := context.Background()

	id, err := svc.CreateChallenge(ctx, &schema.Challenge{
		Title:      "Build a TCP proxy",
		SkillID:    skillID,
		Difficulty: "SuperHard", // 非法难度回退
		Notes:      "从 echo server 开始",
	})
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	started, err := svc.StartChallenge(ctx, id)
	if err != nil || !started {
		t.Fatalf("StartChallenge = %v, %v", started, err)
	}

	// 进度允许回退，时间只增不减
	if err := svc.UpdateChallengeProgress(ctx, id, 80, 60, ""); err != nil {
		t.Fatalf("UpdateChallengeProgress error: %v", err)
	}
	if err := svc.UpdateChallengeProgress(ctx, id, 30, 30, "重写了转发逻辑"); err != nil {
		t.Fatalf("UpdateChallengeProgress error: %v", err)
	}

	var c schema.Challenge
	if err := db.First(&c, id).Error; err != nil {
		t.Fatalf("load challenge: %v", err)
	}
	if c.Difficulty != schema.DifficultyIntermediate {
		t.Fatalf("Difficulty=%q, want intermediate fallback", c.Difficulty)
	}
	if c.ProgressPercent != 30 {
		t.Fatalf("ProgressPercent=%d, want 30", c.ProgressPercent)
	}
	if c.TimeSpent != 90 {
		t.Fatalf("TimeSpent=%d, want 90", c.TimeSpent)
	}

	if err := svc.CompleteChallenge(ctx, id, "https://github.com/u/proxy", "用了 io.Copy"); err != nil {
		t.Fatalf("CompleteChallenge error: %v", err)
	}

	if err := db.First(&c, id).Error; err != nil {
		t.Fatalf("load challenge: %v", err)
	}
	if c.Status != schema.ChallengeCompleted || c.CompletedAt == nil {
		t.Fatalf("status=%q completedAt=%v", c.Status, c.CompletedAt)
	}
	if c.ProgressPercent != 100 {
		t.Fatalf("ProgressPercent=%d, want forced 100", c.ProgressPercent)
	}
	// 完成备注追加在已有备注后面
	if !strings.Contains(c.Notes, "从 echo server 开始") || !strings.Contains(c.Notes, "Final notes: 用了 io.Copy") {
		t.Fatalf("Notes=%q", c.Notes)
	}

	var evidence []schema.SkillEvidence
	if err := db.Where("skill_id = ?", skillID).Find(&evidence).Error; err != nil {
		t.Fatalf("load evidence: %v", err)
	}
	if len(evidence) != 1 || evidence[0].EvidenceType != schema.EvidenceProjectCompleted {
		t.Fatalf("evidence=%v", evidence)
	}
}

func TestSolveObstacleEvidenceTruncated(t *testing.T) {
	svc, db, skillID := newTestChallengeService(t)
	ctx := context.Background()

	cID, err := svc.CreateChallenge(ctx, &schema.Challenge{Title: "Parser", SkillID: skillID})
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}
	oID, err := svc.LogObstacle(ctx, cID, "递归下降时栈溢出")
	if err != nil {
		t.Fatalf("LogObstacle error: %v", err)
	}

	solution := strings.Repeat("x", 300)
	if err := svc.SolveObstacle(ctx, oID, solution, "尾递归改循环", 45, "博客"); err != nil {
		t.Fatalf("SolveObstacle error: %v", err)
	}

	var o schema.Obstacle
	if err := db.First(&o, oID).Error; err != nil {
		t.Fatalf("load obstacle: %v", err)
	}
	if o.Status != schema.ObstacleSolved || o.SolvedAt == nil {
		t.Fatalf("obstacle=%+v", o)
	}

	var evidence []schema.SkillEvidence
	if err := db.Where("evidence_type = ?", schema.EvidenceObstacleOvercome).Find(&evidence).Error; err != nil {
		t.Fatalf("load evidence: %v", err)
	}
	if len(evidence) != 1 {
		t.Fatalf("evidence=%d, want 1", len(evidence))
	}
	if got := len([]rune(evidence[0].Description)); got != 200 {
		t.Fatalf("description length=%d, want 200", got)
	}
}

func TestCompetencyForCount(t *testing.T) {
	cases := []struct {
		completed int64
		level     string
		percent   int
	}{
		{0, "just_starting", 10},
		{1, "beginner", 30},
		{2, "beginner+", 50},
		{4, "beginner+", 50},
		{5, "intermediate", 70},
		{9, "intermediate", 70},
		{10, "advanced", 90},
		{25, "advanced", 90},
	}
	for _, c := range cases {
		got := competencyForCount(c.completed)
		if got.Level != c.level || got.Percent != c.percent {
			t.Errorf("competencyForCount(%d)=%+v, want %s/%d", c.completed, got, c.level, c.percent)
		}
	}
}

func TestGetRecommendedChallenge(t *testing.T) {
	svc, _, skillID := newTestChallengeService(t)
	ctx := context.Background()

	mk := func(title string, hours int, prereqs ...string) int64 {
		id, err := svc.CreateChallenge(ctx, &schema.Challenge{
			Title:          title,
			SkillID:        skillID,
			EstimatedHours: hours,
			Prerequisites:  schema.JSONArray(prereqs),
		})
		if err != nil {
			t.Fatalf("CreateChallenge(%s): %v", title, err)
		}
		return id
	}

	aID := mk("Echo server", 5)
	mk("TCP proxy", 2, "Echo server")
	mk("HTTP client", 5)

	// 还没完成任何挑战：前置未满足的被排除，同小时数时取 ID 较小者
	rec, err := svc.GetRecommendedChallenge(ctx, skillID)
	if err != nil {
		t.Fatalf("GetRecommendedChallenge error: %v", err)
	}
	if rec == nil || rec.Challenge.Title != "Echo server" {
		t.Fatalf("rec=%+v, want Echo server", rec)
	}
	if len(rec.Unlocks) != 1 || rec.Unlocks[0] != "TCP proxy" {
		t.Fatalf("unlocks=%v", rec.Unlocks)
	}

	// 完成 Echo server 后，耗时最短的 TCP proxy 解锁并胜出
	if _, err := svc.StartChallenge(ctx, aID); err != nil {
		t.Fatalf("StartChallenge error: %v", err)
	}
	if err := svc.CompleteChallenge(ctx, aID, "", ""); err != nil {
		t.Fatalf("CompleteChallenge error: %v", err)
	}

	rec, err = svc.GetRecommendedChallenge(ctx, skillID)
	if err != nil {
		t.Fatalf("GetRecommendedChallenge error: %v", err)
	}
	if rec == nil || rec.Challenge.Title != "TCP proxy" {
		t.Fatalf("rec=%+v, want TCP proxy", rec)
	}
}

func TestGetRecommendedChallengeNone(t *testing.T) {
	svc, _, skillID := newTestChallengeService(t)
	ctx := context.Background()

	if _, err := svc.CreateChallenge(ctx, &schema.Challenge{
		Title:         "Locked",
		SkillID:       skillID,
		Prerequisites: schema.JSONArray{"Missing"},
	}); err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	rec, err := svc.GetRecommendedChallenge(ctx, skillID)
	if err != nil {
		t.Fatalf("GetRecommendedChallenge error: %v", err)
	}
	if rec != nil {
		t.Fatalf("rec=%+v, want nil (无可推荐不是错误)", rec)
	}
}
