package schema

import (
	"time"
)

// Skill 正在学习的技能/主题
// 数据量级：十级
type Skill struct {
	ID               int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string      `gorm:"size:100;uniqueIndex;not null" json:"name"` // 唯一名称，区分大小写
	Category         string      `gorm:"size:50;index" json:"category"`
	Difficulty       Difficulty  `gorm:"size:20;default:beginner" json:"difficulty"`
	TargetLevel      string      `gorm:"size:100" json:"target_level"`
	Status           SkillStatus `gorm:"size:20;index;default:active" json:"status"`
	StartDate        time.Time   `gorm:"autoCreateTime" json:"start_date"`
	LastReviewed     *time.Time  `json:"last_reviewed"`
	NextReview       *time.Time  `gorm:"index" json:"next_review"`
	TotalTimeMinutes int         `gorm:"default:0" json:"total_time_minutes"` // 只增不减的累加器
	Notes            string      `gorm:"type:text" json:"notes"`

	// AI 路线图元数据（生成路线图时写入）
	CurrentLevel     string `gorm:"size:100" json:"current_level"`
	Goals            string `gorm:"type:text" json:"goals"`
	Timeline         string `gorm:"size:100" json:"timeline"`
	RoadmapGenerated bool   `gorm:"default:false" json:"roadmap_generated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Skill) TableName() string {
	return "skills"
}

// Session 一次学习会话记录，只追加
// 写入会话会同步更新所属 Skill 的累计时长和 next_review
type Session struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SkillID            int64     `gorm:"index;not null" json:"skill_id"`
	SessionDate        time.Time `gorm:"autoCreateTime;index" json:"session_date"`
	DurationMinutes    int       `gorm:"not null" json:"duration_minutes"`
	TopicsCovered      string    `gorm:"type:text" json:"topics_covered"`
	UnderstandingLevel int       `json:"understanding_level"` // 1-5
	Notes              string    `gorm:"type:text" json:"notes"`
	KeyTakeaways       string    `gorm:"type:text" json:"key_takeaways"`
}

// TableName 指定表名
func (Session) TableName() string {
	return "sessions"
}

// Milestone 技能里程碑，completed 只能单向 false→true
type Milestone struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SkillID       int64      `gorm:"index;not null" json:"skill_id"`
	Milestone     string     `gorm:"type:text;not null" json:"milestone"`
	TargetDate    string     `gorm:"size:10" json:"target_date"` // YYYY-MM-DD，可空
	Completed     bool       `gorm:"default:false" json:"completed"`
	CompletedDate *time.Time `json:"completed_date"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Milestone) TableName() string {
	return "milestones"
}
