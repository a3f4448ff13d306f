package service

import (
	"context"
	"time"

	"github.com/yuqie6/MindMirror/internal/ai"
	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type SkillRepository interface {
	Create(ctx context.Context, skill *schema.Skill) error
	GetByID(ctx context.Context, id int64) (*schema.Skill, error)
	GetByName(ctx context.Context, name string) (*schema.Skill, error)
	GetAll(ctx context.Context, status schema.SkillStatus) ([]schema.Skill, error)
	Update(ctx context.Context, skill *schema.Skill) error
	Exists(ctx context.Context, id int64) (bool, error)
	CountDue(ctx context.Context, now time.Time) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *schema.Session) error
	RecentForSkill(ctx context.Context, skillID int64, limit int) ([]schema.Session, error)
	StatsSince(ctx context.Context, since time.Time) (sessions int64, minutes int64, err error)
	TimeBySkillSince(ctx context.Context, since time.Time) ([]repository.SkillTimeStat, error)
	CountForSkill(ctx context.Context, skillID int64) (int64, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *schema.LearningItem) error
	GetByID(ctx context.Context, id int64) (*schema.LearningItem, error)
	Update(ctx context.Context, item *schema.LearningItem) error
	Due(ctx context.Context, skillID int64, limit int, now time.Time) ([]schema.LearningItem, error)
	Search(ctx context.Context, keyword string, skillID int64, limit int) ([]schema.LearningItem, error)
	StatsForSkill(ctx context.Context, skillID int64) (*repository.ItemStats, error)
	CountDue(ctx context.Context, now time.Time) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, event *schema.ReviewEvent) error
	AccuracySince(ctx context.Context, since time.Time) (total int64, correct int64, err error)
}

type MilestoneRepository interface {
	Create(ctx context.Context, m *schema.Milestone) error
	GetByID(ctx context.Context, id int64) (*schema.Milestone, error)
	ForSkill(ctx context.Context, skillID int64, includeCompleted bool) ([]schema.Milestone, error)
	Update(ctx context.Context, m *schema.Milestone) error
}

type ChallengeRepository interface {
	Create(ctx context.Context, c *schema.Challenge) error
	GetByID(ctx context.Context, id int64) (*schema.Challenge, error)
	List(ctx context.Context, skillID int64, status schema.ChallengeStatus) ([]schema.Challenge, error)
	Update(ctx context.Context, c *schema.Challenge) error
	CompletedTitles(ctx context.Context, skillID int64) ([]string, error)
	StatsForSkill(ctx context.Context, skillID int64) (*repository.ChallengeStats, error)
}

type ObstacleRepository interface {
	Create(ctx context.Context, o *schema.Obstacle) error
	GetByID(ctx context.Context, id int64) (*schema.Obstacle, error)
	ForChallenge(ctx context.Context, challengeID int64) ([]schema.Obstacle, error)
	Update(ctx context.Context, o *schema.Obstacle) error
	Search(ctx context.Context, keyword string) ([]repository.ObstacleHit, error)
	StatsForSkill(ctx context.Context, skillID int64) (*repository.ObstacleStats, error)
}

type EvidenceRepository interface {
	Create(ctx context.Context, e *schema.SkillEvidence) error
	CountForSkill(ctx context.Context, skillID int64) (int64, error)
}

type StreakRepository interface {
	GetByDate(ctx context.Context, date string) (*schema.DailyStreak, error)
	Create(ctx context.Context, s *schema.DailyStreak) error
	Update(ctx context.Context, s *schema.DailyStreak) error
	DatesDesc(ctx context.Context) ([]string, error)
}

type FactRepository interface {
	Create(ctx context.Context, f *schema.Fact) error
	Search(ctx context.Context, keyword string, limit int) ([]schema.Fact, error)
	Recent(ctx context.Context, limit int) ([]schema.Fact, error)
	AboutEntity(ctx context.Context, entity string) ([]schema.Fact, error)
}

type PreferenceRepository interface {
	Upsert(ctx context.Context, p *schema.Preference) error
	Get(ctx context.Context, key string) (string, error)
}

type GoalRepository interface {
	Create(ctx context.Context, g *schema.Goal) error
	Active(ctx context.Context) ([]schema.Goal, error)
	Complete(ctx context.Context, id int64) error
}

// Generator 对话补全服务（黑盒）
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// Chatter 多轮对话补全
type Chatter interface {
	Chat(ctx context.Context, messages []ai.Message, systemPrompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// VectorIndex 向量检索，不可用时调用方需降级到关键词检索
type VectorIndex interface {
	Upsert(ctx context.Context, collection, id, document string, metadata map[string]string) error
	Query(ctx context.Context, collection, text string, topK int) ([]VectorHit, error)
	IsConfigured() bool
}

// VectorHit 向量检索命中
type VectorHit struct {
	Document string
	Metadata map[string]string
}
