package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
)

// ErrDuplicateSkill 技能名已存在，调用方可从返回值拿到已有 ID
var ErrDuplicateSkill = errors.New("技能名已存在")

// LearningService 学习追踪服务：技能、会话、条目、里程碑
type LearningService struct {
	skillRepo     SkillRepository
	sessionRepo   SessionRepository
	itemRepo      ItemRepository
	reviewRepo    ReviewRepository
	milestoneRepo MilestoneRepository
	now           func() time.Time
}

// NewLearningService 创建学习服务
func NewLearningService(skillRepo SkillRepository, sessionRepo SessionRepository, itemRepo ItemRepository, reviewRepo ReviewRepository, milestoneRepo MilestoneRepository) *LearningService {
	return &LearningService{
		skillRepo:     skillRepo,
		sessionRepo:   sessionRepo,
		itemRepo:      itemRepo,
		reviewRepo:    reviewRepo,
		milestoneRepo: milestoneRepo,
		now:           time.Now,
	}
}

// AddSkill 新建技能；重名时返回已有 ID 和 ErrDuplicateSkill（幂等）
func (s *LearningService) AddSkill(ctx context.Context, name, category string, difficulty schema.Difficulty, targetLevel, notes string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("技能名不能为空")
	}

	existing, err := s.skillRepo.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		slog.Warn("技能已存在，返回已有记录", "name", name, "id", existing.ID)
		return existing.ID, ErrDuplicateSkill
	}

	now := s.now()
	next := now.Add(24 * time.Hour)
	skill := &schema.Skill{
		Name:        name,
		Category:    category,
		Difficulty:  schema.ParseDifficulty(string(difficulty), schema.DifficultyBeginner),
		TargetLevel: targetLevel,
		Status:      schema.SkillStatusActive,
		StartDate:   now,
		NextReview:  &next,
		Notes:       notes,
	}
	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return 0, err
	}
	return skill.ID, nil
}

// SkillDetails 技能详情视图
type SkillDetails struct {
	Skill          *schema.Skill
	RecentSessions []schema.Session
	ItemStats      *repository.ItemStats
}

// GetSkillDetails 技能详情：技能行 + 最近 5 次会话 + 条目聚合
func (s *LearningService) GetSkillDetails(ctx context.Context, id int64) (*SkillDetails, error) {
	skill, err := s.skillRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.RecentForSkill(ctx, id, 5)
	if err != nil {
		return nil, err
	}
	stats, err := s.itemRepo.StatsForSkill(ctx, id)
	if err != nil {
		return nil, err
	}

	return &SkillDetails{Skill: skill, RecentSessions: sessions, ItemStats: stats}, nil
}

// ListSkills 按状态列出技能
func (s *LearningService) ListSkills(ctx context.Context, status schema.SkillStatus) ([]schema.Skill, error) {
	return s.skillRepo.GetAll(ctx, status)
}

// LogSession 记录一次学习会话并更新技能聚合字段
func (s *LearningService) LogSession(ctx context.Context, skillID int64, durationMinutes int, topics string, understandingLevel int, notes, takeaways string) (int64, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return 0, err
	}

	understandingLevel = schema.ClampLevel(understandingLevel)
	session := &schema.Session{
		SkillID:            skillID,
		DurationMinutes:    durationMinutes,
		TopicsCovered:      topics,
		UnderstandingLevel: understandingLevel,
		Notes:              notes,
		KeyTakeaways:       takeaways,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return 0, err
	}

	now := s.now()
	next := nextReviewForSessionAt(now, understandingLevel)
	skill.TotalTimeMinutes += durationMinutes
	skill.LastReviewed = &now
	skill.NextReview = &next
	if err := s.skillRepo.Update(ctx, skill); err != nil {
		return 0, err
	}

	return session.ID, nil
}

// AddLearningItem 新建学习条目，首次复习安排在一天后
func (s *LearningService) AddLearningItem(ctx context.Context, skillID int64, itemType schema.ItemType, question, answer string, difficulty int, tags, source string) (int64, error) {
	ok, err := s.skillRepo.Exists(ctx, skillID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("技能 %d: %w", skillID, repository.ErrNotFound)
	}

	next := s.now().Add(24 * time.Hour)
	item := &schema.LearningItem{
		SkillID:         skillID,
		ItemType:        schema.ParseItemType(string(itemType)),
		Question:        question,
		Answer:          answer,
		Difficulty:      schema.ClampLevel(difficulty),
		ConfidenceLevel: 1,
		NextReview:      &next,
		Tags:            tags,
		Source:          source,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return 0, err
	}
	return item.ID, nil
}

// ItemsDueForReview 已到期条目，薄弱且逾期的在前
func (s *LearningService) ItemsDueForReview(ctx context.Context, skillID int64, limit int) ([]schema.LearningItem, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.itemRepo.Due(ctx, skillID, limit, s.now())
}

// RecordReview 记录一次复习：追加事件并更新条目的计数与排期
func (s *LearningService) RecordReview(ctx context.Context, itemID int64, wasCorrect bool, confidenceBefore, confidenceAfter, timeTakenSeconds int) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	confidenceBefore = schema.ClampLevel(confidenceBefore)
	confidenceAfter = schema.ClampLevel(confidenceAfter)

	event := &schema.ReviewEvent{
		ItemID:           itemID,
		WasCorrect:       wasCorrect,
		ConfidenceBefore: confidenceBefore,
		ConfidenceAfter:  confidenceAfter,
		TimeTakenSeconds: timeTakenSeconds,
	}
	if err := s.reviewRepo.Create(ctx, event); err != nil {
		return err
	}

	now := s.now()
	next := nextReviewForItemAt(now, wasCorrect, confidenceAfter)
	item.TimesReviewed++
	if wasCorrect {
		item.TimesCorrect++
	}
	item.LastReviewed = &now
	item.ConfidenceLevel = confidenceAfter
	item.NextReview = &next
	return s.itemRepo.Update(ctx, item)
}

// SearchItems 在问题/答案/标签上做关键词检索
func (s *LearningService) SearchItems(ctx context.Context, keyword string, skillID int64, limit int) ([]schema.LearningItem, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.itemRepo.Search(ctx, keyword, skillID, limit)
}

// AddMilestone 为技能添加里程碑
func (s *LearningService) AddMilestone(ctx context.Context, skillID int64, milestone, targetDate, notes string) (int64, error) {
	ok, err := s.skillRepo.Exists(ctx, skillID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("技能 %d: %w", skillID, repository.ErrNotFound)
	}

	m := &schema.Milestone{
		SkillID:    skillID,
		Milestone:  milestone,
		TargetDate: targetDate,
		Notes:      notes,
	}
	if err := s.milestoneRepo.Create(ctx, m); err != nil {
		return 0, err
	}
	return m.ID, nil
}

// ListMilestones 列出技能的里程碑
func (s *LearningService) ListMilestones(ctx context.Context, skillID int64, includeCompleted bool) ([]schema.Milestone, error) {
	return s.milestoneRepo.ForSkill(ctx, skillID, includeCompleted)
}

// CompleteMilestone 完成里程碑
func (s *LearningService) CompleteMilestone(ctx context.Context, id int64, notes string) error {
	m, err := s.milestoneRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	m.Completed = true
	m.CompletedDate = &now
	if notes != "" {
		m.Notes = appendNotes(m.Notes, notes)
	}
	return s.milestoneRepo.Update(ctx, m)
}

// DailyReview 每日复习摘要
type DailyReview struct {
	DueSkills int64
	DueItems  int64
	Items     []schema.LearningItem
}

// GetDailyReview 汇总今天需要复习的技能与条目
func (s *LearningService) GetDailyReview(ctx context.Context, limit int) (*DailyReview, error) {
	if limit <= 0 {
		limit = 10
	}
	now := s.now()

	dueSkills, err := s.skillRepo.CountDue(ctx, now)
	if err != nil {
		return nil, err
	}
	dueItems, err := s.itemRepo.CountDue(ctx, now)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.Due(ctx, 0, limit, now)
	if err != nil {
		return nil, err
	}

	return &DailyReview{DueSkills: dueSkills, DueItems: dueItems, Items: items}, nil
}

// LearningStats 近期学习统计
type LearningStats struct {
	SessionsLast7Days int64
	MinutesLast7Days  int64
	ReviewsLast7Days  int64
	CorrectLast7Days  int64
	TimeBySkill       []repository.SkillTimeStat
	DueItems          int64
}

// GetLearningStats 最近 7 天的学习统计
func (s *LearningService) GetLearningStats(ctx context.Context) (*LearningStats, error) {
	now := s.now()
	since := now.Add(-7 * 24 * time.Hour)

	sessions, minutes, err := s.sessionRepo.StatsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	total, correct, err := s.reviewRepo.AccuracySince(ctx, since)
	if err != nil {
		return nil, err
	}
	bySkill, err := s.sessionRepo.TimeBySkillSince(ctx, since)
	if err != nil {
		return nil, err
	}
	due, err := s.itemRepo.CountDue(ctx, now)
	if err != nil {
		return nil, err
	}

	return &LearningStats{
		SessionsLast7Days: sessions,
		MinutesLast7Days:  minutes,
		ReviewsLast7Days:  total,
		CorrectLast7Days:  correct,
		TimeBySkill:       bySkill,
		DueItems:          due,
	}, nil
}

// appendNotes 追加备注，换行连接而不是覆盖
func appendNotes(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
}
