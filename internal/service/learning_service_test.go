package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

func newTestLearningService(t *testing.T) (*LearningService, time.Time) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	svc := NewLearningService(
		repository.NewSkillRepository(db),
		repository.NewSessionRepository(db),
		repository.NewItemRepository(db),
		repository.NewReviewRepository(db),
		repository.NewMilestoneRepository(db),
	)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, now
}

func TestAddSkillDuplicateReturnsExistingID(t *testing.T) {
	svc, _ := newTestLearningService(t)
	ctx := context.Background()

	id1, err := svc.AddSkill(ctx, "Go", "language", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}

	id2, err := svc.AddSkill(ctx, "Go", "", schema.DifficultyAdvanced, "", "")
	if !errors.Is(err, ErrDuplicateSkill) {
		t.Fatalf("err=%v, want ErrDuplicateSkill", err)
	}
	if id2 != id1 {
		t.Fatalf("id2=%d, want existing id %d", id2, id1)
	}
}

func TestAddSkillInitialNextReview(t *testing.T) {
	svc, now := newTestLearningService(t)
	ctx := context.Background()

	id, err := svc.AddSkill(ctx, "Rust", "", schema.DifficultyIntermediate, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}

	details, err := svc.GetSkillDetails(ctx, id)
	if err != nil {
		t.Fatalf("GetSkillDetails error: %v", err)
	}
	if details.Skill.NextReview == nil {
		t.Fatal("NextReview not set")
	}
	if want := now.Add(24 * time.Hour); !details.Skill.NextReview.Equal(want) {
		t.Fatalf("NextReview=%v, want %v", details.Skill.NextReview, want)
	}
}

func TestLogSessionUpdatesSkillAggregates(t *testing.T) {
	svc, now := newTestLearningService(t)
	ctx := context.Background()

	id, err := svc.AddSkill(ctx, "Python", "", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}

	sessionID, err := svc.LogSession(ctx, id, 45, "decorators", 5, "", "")
	if err != nil {
		t.Fatalf("LogSession error: %v", err)
	}
	if sessionID == 0 {
		t.Fatal("sessionID not assigned")
	}

	details, err := svc.GetSkillDetails(ctx, id)
	if err != nil {
		t.Fatalf("GetSkillDetails error: %v", err)
	}
	if details.Skill.TotalTimeMinutes != 45 {
		t.Fatalf("TotalTimeMinutes=%d, want 45", details.Skill.TotalTimeMinutes)
	}
	if details.Skill.LastReviewed == nil || !details.Skill.LastReviewed.Equal(now) {
		t.Fatalf("LastReviewed=%v, want %v", details.Skill.LastReviewed, now)
	}
	// 理解程度 5 → 30 天后复习
	if want := now.Add(30 * 24 * time.Hour); !details.Skill.NextReview.Equal(want) {
		t.Fatalf("NextReview=%v, want %v", details.Skill.NextReview, want)
	}
	if len(details.RecentSessions) != 1 {
		t.Fatalf("RecentSessions=%d, want 1", len(details.RecentSessions))
	}
}

func TestLogSessionUnknownSkill(t *testing.T) {
	svc, _ := newTestLearningService(t)

	if _, err := svc.LogSession(context.Background(), 42, 30, "", 3, "", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestLogSessionClampsUnderstanding(t *testing.T) {
	svc, now := newTestLearningService(t)
	ctx := context.Background()

	id, err := svc.AddSkill(ctx, "SQL", "", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}

	// 超出范围的评分回退到 3 → 7 天
	if _, err := svc.LogSession(ctx, id, 10, "joins", 99, "", ""); err != nil {
		t.Fatalf("LogSession error: %v", err)
	}

	details, _ := svc.GetSkillDetails(ctx, id)
	if want := now.Add(7 * 24 * time.Hour); !details.Skill.NextReview.Equal(want) {
		t.Fatalf("NextReview=%v, want %v", details.Skill.NextReview, want)
	}
}

func TestRecordReviewIncorrect(t *testing.T) {
	svc, now := newTestLearningService(t)
	ctx := context.Background()

	skillID, err := svc.AddSkill(ctx, "Go", "", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}
	itemID, err := svc.AddLearningItem(ctx, skillID, schema.ItemTypeQA, "什么是 channel", "goroutine 间的通信管道", 3, "", "")
	if err != nil {
		t.Fatalf("AddLearningItem error: %v", err)
	}

	if err := svc.RecordReview(ctx, itemID, false, 3, 5, 20); err != nil {
		t.Fatalf("RecordReview error: %v", err)
	}

	items, err := svc.SearchItems(ctx, "channel", skillID, 10)
	if err != nil {
		t.Fatalf("SearchItems error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items=%d, want 1", len(items))
	}
	item := items[0]
	if item.TimesReviewed != 1 || item.TimesCorrect != 0 {
		t.Fatalf("counters=%d/%d, want 1/0", item.TimesReviewed, item.TimesCorrect)
	}
	if item.ConfidenceLevel != 5 {
		t.Fatalf("ConfidenceLevel=%d, want 5", item.ConfidenceLevel)
	}
	// 答错一律 4 小时后重试，即使事后自评很高
	if want := now.Add(4 * time.Hour); !item.NextReview.Equal(want) {
		t.Fatalf("NextReview=%v, want %v", item.NextReview, want)
	}
}

func TestRecordReviewUnknownItem(t *testing.T) {
	svc, _ := newTestLearningService(t)

	if err := svc.RecordReview(context.Background(), 7, true, 3, 4, 0); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestCompleteMilestone(t *testing.T) {
	svc, _ := newTestLearningService(t)
	ctx := context.Background()

	skillID, err := svc.AddSkill(ctx, "Go", "", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}
	mID, err := svc.AddMilestone(ctx, skillID, "写完第一个 web 服务", "2026-04-01", "")
	if err != nil {
		t.Fatalf("AddMilestone error: %v", err)
	}

	if err := svc.CompleteMilestone(ctx, mID, "比预期提前"); err != nil {
		t.Fatalf("CompleteMilestone error: %v", err)
	}

	done, err := svc.ListMilestones(ctx, skillID, true)
	if err != nil {
		t.Fatalf("ListMilestones error: %v", err)
	}
	if len(done) != 1 || !done[0].Completed || done[0].CompletedDate == nil {
		t.Fatalf("milestone=%+v", done[0])
	}

	pending, err := svc.ListMilestones(ctx, skillID, false)
	if err != nil {
		t.Fatalf("ListMilestones error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending=%d, want 0", len(pending))
	}
}

func TestGetDailyReview(t *testing.T) {
	svc, _ := newTestLearningService(t)
	ctx := context.Background()

	skillID, err := svc.AddSkill(ctx, "Go", "", schema.DifficultyBeginner, "", "")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}
	// 新条目的 next_review 在一天后，还不到期
	if _, err := svc.AddLearningItem(ctx, skillID, schema.ItemTypeConcept, "", "interface 是方法集合的契约", 2, "", ""); err != nil {
		t.Fatalf("AddLearningItem error: %v", err)
	}

	review, err := svc.GetDailyReview(ctx, 10)
	if err != nil {
		t.Fatalf("GetDailyReview error: %v", err)
	}
	if review.DueItems != 0 || len(review.Items) != 0 {
		t.Fatalf("review=%+v, want nothing due", review)
	}
}
