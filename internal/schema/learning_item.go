package schema

import "time"

// LearningItem 间隔重复队列中的原子条目（概念/事实/问答/示例）
// 每次复习递增计数器并重算 next_review
type LearningItem struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SkillID         int64      `gorm:"index;not null" json:"skill_id"`
	ItemType        ItemType   `gorm:"size:20;not null" json:"item_type"`
	Question        string     `gorm:"type:text" json:"question"` // qa 类型必填
	Answer          string     `gorm:"type:text;not null" json:"answer"`
	Difficulty      int        `gorm:"default:3" json:"difficulty"`
	TimesReviewed   int        `gorm:"default:0" json:"times_reviewed"`
	TimesCorrect    int        `gorm:"default:0" json:"times_correct"`
	LastReviewed    *time.Time `json:"last_reviewed"`
	NextReview      *time.Time `gorm:"index:idx_items_next_review,priority:1" json:"next_review"`
	ConfidenceLevel int        `gorm:"default:1;index:idx_items_next_review,priority:2" json:"confidence_level"`
	Tags            string     `gorm:"size:255" json:"tags"`
	Source          string     `gorm:"size:255" json:"source"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (LearningItem) TableName() string {
	return "learning_items"
}

// ReviewEvent 复习事件，只追加的审计记录
// 每条事件恰好对应一次 LearningItem 变更
type ReviewEvent struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID           int64     `gorm:"index;not null" json:"item_id"`
	ReviewDate       time.Time `gorm:"autoCreateTime" json:"review_date"`
	WasCorrect       bool      `json:"was_correct"`
	ConfidenceBefore int       `json:"confidence_before"`
	ConfidenceAfter  int       `json:"confidence_after"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

// TableName 指定表名
func (ReviewEvent) TableName() string {
	return "review_events"
}
