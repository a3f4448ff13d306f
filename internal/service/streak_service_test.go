package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
)

type fakeStreakRepo struct {
	rows map[string]*schema.DailyStreak
}

func newFakeStreakRepo(dates ...string) *fakeStreakRepo {
	r := &fakeStreakRepo{rows: make(map[string]*schema.DailyStreak)}
	for _, d := range dates {
		r.rows[d] = &schema.DailyStreak{Date: d, MaintainedStreak: true}
	}
	return r
}

func (r *fakeStreakRepo) GetByDate(ctx context.Context, date string) (*schema.DailyStreak, error) {
	if s, ok := r.rows[date]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeStreakRepo) Create(ctx context.Context, s *schema.DailyStreak) error {
	copy := *s
	r.rows[s.Date] = &copy
	return nil
}
func (r *fakeStreakRepo) Update(ctx context.Context, s *schema.DailyStreak) error {
	copy := *s
	r.rows[s.Date] = &copy
	return nil
}
func (r *fakeStreakRepo) DatesDesc(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(r.rows))
	for d, s := range r.rows {
		if s.MaintainedStreak {
			out = append(out, d)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func newTestStreakService(repo *fakeStreakRepo, today string) *StreakService {
	svc := NewStreakService(repo)
	svc.now = func() time.Time {
		t, _ := time.Parse(dateLayout, today)
		return t
	}
	return svc
}

func TestLogDailyStreakUpsertAccumulates(t *testing.T) {
	repo := newFakeStreakRepo()
	svc := newTestStreakService(repo, "2026-03-10")
	ctx := context.Background()

	if err := svc.LogDailyStreak(ctx, 30, 0, 1, 0, "早上"); err != nil {
		t.Fatalf("LogDailyStreak error: %v", err)
	}
	if err := svc.LogDailyStreak(ctx, 45, 7, 1, 2, "晚上"); err != nil {
		t.Fatalf("LogDailyStreak error: %v", err)
	}

	row := repo.rows["2026-03-10"]
	if row == nil {
		t.Fatal("no row for today")
	}
	if row.MinutesWorked != 75 {
		t.Fatalf("MinutesWorked=%d, want 75", row.MinutesWorked)
	}
	if row.ObstaclesEncountered != 2 || row.ObstaclesSolved != 2 {
		t.Fatalf("obstacles=%d/%d, want 2/2", row.ObstaclesEncountered, row.ObstaclesSolved)
	}
	if row.ChallengeID == nil || *row.ChallengeID != 7 {
		t.Fatalf("ChallengeID=%v, want 7", row.ChallengeID)
	}
	if row.Notes != "早上\n晚上" {
		t.Fatalf("Notes=%q", row.Notes)
	}
}

func TestGetStreakStats(t *testing.T) {
	repo := newFakeStreakRepo(
		"2026-03-10", "2026-03-09", "2026-03-08",
		// 3 月 6/7 断档
		"2026-03-05", "2026-03-04", "2026-03-03", "2026-03-02",
	)
	svc := newTestStreakService(repo, "2026-03-10")

	stats, err := svc.GetStreakStats(context.Background())
	if err != nil {
		t.Fatalf("GetStreakStats error: %v", err)
	}
	if stats.CurrentStreak != 3 {
		t.Errorf("CurrentStreak=%d, want 3", stats.CurrentStreak)
	}
	if stats.LongestStreak != 4 {
		t.Errorf("LongestStreak=%d, want 4", stats.LongestStreak)
	}
	if stats.TotalDays != 7 {
		t.Errorf("TotalDays=%d, want 7", stats.TotalDays)
	}
}

func TestGetStreakStatsTodayMissing(t *testing.T) {
	repo := newFakeStreakRepo("2026-03-09", "2026-03-08")
	svc := newTestStreakService(repo, "2026-03-10")

	stats, err := svc.GetStreakStats(context.Background())
	if err != nil {
		t.Fatalf("GetStreakStats error: %v", err)
	}
	// 今天没打卡，当前连胜归零，但历史最长不受影响
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak=%d, want 0", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("LongestStreak=%d, want 2", stats.LongestStreak)
	}
}

func TestGetStreakStatsEmpty(t *testing.T) {
	svc := newTestStreakService(newFakeStreakRepo(), "2026-03-10")

	stats, err := svc.GetStreakStats(context.Background())
	if err != nil {
		t.Fatalf("GetStreakStats error: %v", err)
	}
	if stats.CurrentStreak != 0 || stats.LongestStreak != 0 || stats.TotalDays != 0 {
		t.Fatalf("stats=%+v, want zeros", stats)
	}
}
