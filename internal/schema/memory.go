package schema

import "time"

// Fact 关于某个实体的记忆事实
// 同步写入关系库与向量库，向量库失败不影响落库
type Fact struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Entity    string    `gorm:"size:100;index;not null" json:"entity"`
	Content   string    `gorm:"column:fact;type:text;not null" json:"fact"`
	Context   string    `gorm:"type:text" json:"context"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Fact) TableName() string {
	return "facts"
}

// Preference 用户偏好键值对
type Preference struct {
	Key         string    `gorm:"primaryKey;size:100" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Preference) TableName() string {
	return "preferences"
}

// Goal 用户目标
type Goal struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content     string     `gorm:"column:goal;type:text;not null" json:"goal"`
	Deadline    string     `gorm:"size:50" json:"deadline"`
	Status      GoalStatus `gorm:"size:20;index;default:active" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName 指定表名
func (Goal) TableName() string {
	return "goals"
}
