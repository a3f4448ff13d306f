package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/testutil"
)

func TestStreakRepositoryGetByDateMissingReturnsNil(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStreakRepository(db)

	s, err := repo.GetByDate(context.Background(), "2026-01-01")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil, got %+v", s)
	}
}

func TestStreakRepositoryDatesDesc(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStreakRepository(db)
	ctx := context.Background()

	for _, d := range []string{"2026-03-01", "2026-03-03", "2026-03-02"} {
		if err := repo.Create(ctx, &schema.DailyStreak{Date: d, MinutesWorked: 30, MaintainedStreak: true}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	// 断掉的那天不计入
	if err := repo.Create(ctx, &schema.DailyStreak{Date: "2026-02-20", MaintainedStreak: false}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	dates, err := repo.DatesDesc(ctx)
	if err != nil {
		t.Fatalf("DatesDesc error: %v", err)
	}
	want := []string{"2026-03-03", "2026-03-02", "2026-03-01"}
	if len(dates) != len(want) {
		t.Fatalf("len=%d, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d]=%s, want %s", i, dates[i], want[i])
		}
	}
}

func TestStreakRepositoryBrokenStreakRoundTrips(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStreakRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &schema.DailyStreak{Date: "2026-02-20", MaintainedStreak: false}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.GetByDate(ctx, "2026-02-20")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if got == nil {
		t.Fatal("expected row")
	}
	if got.MaintainedStreak {
		t.Fatal("maintained_streak=true, want false")
	}
}

func TestStreakRepositoryUpdateAccumulates(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStreakRepository(db)
	ctx := context.Background()

	s := &schema.DailyStreak{Date: "2026-03-05", MinutesWorked: 20, MaintainedStreak: true}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	s.MinutesWorked += 40
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	got, err := repo.GetByDate(ctx, "2026-03-05")
	if err != nil {
		t.Fatalf("GetByDate error: %v", err)
	}
	if got == nil || got.MinutesWorked != 60 {
		t.Fatalf("got=%+v", got)
	}
}
