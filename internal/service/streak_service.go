package service

import (
	"context"
	"sort"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
)

const dateLayout = "2006-01-02"

// StreakService 每日连胜服务
type StreakService struct {
	streakRepo StreakRepository
	now        func() time.Time
}

// NewStreakService 创建连胜服务
func NewStreakService(streakRepo StreakRepository) *StreakService {
	return &StreakService{
		streakRepo: streakRepo,
		now:        time.Now,
	}
}

// LogDailyStreak 按自然日 upsert：当天已有记录时累加分钟/计数并追加备注
func (s *StreakService) LogDailyStreak(ctx context.Context, minutes int, challengeID int64, obstaclesEncountered, obstaclesSolved int, notes string) error {
	today := s.now().Format(dateLayout)

	existing, err := s.streakRepo.GetByDate(ctx, today)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.MinutesWorked += minutes
		existing.ObstaclesEncountered += obstaclesEncountered
		existing.ObstaclesSolved += obstaclesSolved
		if challengeID > 0 {
			existing.ChallengeID = &challengeID
		}
		if notes != "" {
			existing.Notes = appendNotes(existing.Notes, notes)
		}
		return s.streakRepo.Update(ctx, existing)
	}

	row := &schema.DailyStreak{
		Date:                 today,
		MinutesWorked:        minutes,
		ObstaclesEncountered: obstaclesEncountered,
		ObstaclesSolved:      obstaclesSolved,
		MaintainedStreak:     true,
		Notes:                notes,
	}
	if challengeID > 0 {
		row.ChallengeID = &challengeID
	}
	return s.streakRepo.Create(ctx, row)
}

// StreakStats 连胜统计
type StreakStats struct {
	CurrentStreak int
	LongestStreak int
	TotalDays     int
}

// GetStreakStats 统计当前连胜、历史最长连胜和总打卡天数
// 当前连胜从今天往回数，今天没有记录即为 0
func (s *StreakService) GetStreakStats(ctx context.Context) (*StreakStats, error) {
	dates, err := s.streakRepo.DatesDesc(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return &StreakStats{}, nil
	}

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today, _ := time.Parse(dateLayout, s.now().Format(dateLayout))

	current := 0
	expect := today
	for _, d := range days {
		if !d.Equal(expect) {
			break
		}
		current++
		expect = expect.AddDate(0, 0, -1)
	}

	longest := 0
	run := 0
	var prev time.Time
	for _, d := range days {
		if run == 0 || prev.AddDate(0, 0, -1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}

	return &StreakStats{
		CurrentStreak: current,
		LongestStreak: longest,
		TotalDays:     len(dates),
	}, nil
}
