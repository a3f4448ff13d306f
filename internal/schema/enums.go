package schema

import "strings"

// Difficulty 技能/挑战难度（闭集）
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty 解析难度字符串，失败时返回 fallback
// 低风险的用户评级输入，越界不报错，回退默认值
func ParseDifficulty(s string, fallback Difficulty) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyBeginner:
		return DifficultyBeginner
	case DifficultyIntermediate:
		return DifficultyIntermediate
	case DifficultyAdvanced:
		return DifficultyAdvanced
	default:
		return fallback
	}
}

// SkillStatus 技能状态
type SkillStatus string

const (
	SkillStatusActive   SkillStatus = "active"
	SkillStatusArchived SkillStatus = "archived"
)

// ItemType 学习条目类型
type ItemType string

const (
	ItemTypeConcept ItemType = "concept"
	ItemTypeFact    ItemType = "fact"
	ItemTypeQA      ItemType = "qa"
	ItemTypeExample ItemType = "example"
)

// ParseItemType 解析条目类型，未知值回退 concept
func ParseItemType(s string) ItemType {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ItemTypeConcept, ItemTypeFact, ItemTypeQA, ItemTypeExample:
		return t
	default:
		return ItemTypeConcept
	}
}

// ChallengeStatus 挑战状态机: not_started → in_progress → {completed, abandoned}
type ChallengeStatus string

const (
	ChallengeNotStarted ChallengeStatus = "not_started"
	ChallengeInProgress ChallengeStatus = "in_progress"
	ChallengeCompleted  ChallengeStatus = "completed"
	ChallengeAbandoned  ChallengeStatus = "abandoned"
)

// ObstacleStatus 障碍状态机: blocking → {solved, workaround}
type ObstacleStatus string

const (
	ObstacleBlocking   ObstacleStatus = "blocking"
	ObstacleSolved     ObstacleStatus = "solved"
	ObstacleWorkaround ObstacleStatus = "workaround"
)

// EvidenceType 技能证据类型
type EvidenceType string

const (
	EvidenceProjectCompleted EvidenceType = "project_completed"
	EvidenceObstacleOvercome EvidenceType = "obstacle_overcome"
	EvidenceConceptApplied   EvidenceType = "concept_applied"
)

// GoalStatus 目标状态
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
)

// ClampLevel 将 1-5 的评分限制在范围内，越界回退 3
func ClampLevel(n int) int {
	if n < 1 || n > 5 {
		return 3
	}
	return n
}

// ClampPercent 将百分比限制在 [0,100]
func ClampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
