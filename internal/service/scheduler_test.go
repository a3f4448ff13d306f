package service

import (
	"testing"
	"time"
)

func TestNextReviewForSessionTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		level    int
		wantDays int
	}{
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 14},
		{5, 30},
		{0, 7},
		{6, 7},
		{-3, 7},
	}
	for _, c := range cases {
		got := nextReviewForSessionAt(now, c.level)
		want := now.Add(time.Duration(c.wantDays) * 24 * time.Hour)
		if !got.Equal(want) {
			t.Errorf("level=%d: got %v, want %v", c.level, got, want)
		}
	}
}

func TestNextReviewForItemCorrectMatchesTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for level := 1; level <= 5; level++ {
		got := nextReviewForItemAt(now, true, level)
		want := nextReviewForSessionAt(now, level)
		if !got.Equal(want) {
			t.Errorf("confidence=%d: got %v, want %v", level, got, want)
		}
	}
}

func TestNextReviewForItemIncorrectIgnoresConfidence(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	want := now.Add(4 * time.Hour)

	for _, confidence := range []int{1, 2, 3, 4, 5, 0, 99} {
		got := nextReviewForItemAt(now, false, confidence)
		if !got.Equal(want) {
			t.Errorf("confidence=%d: got %v, want %v", confidence, got, want)
		}
	}
}
