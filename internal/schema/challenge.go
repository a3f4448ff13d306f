package schema

import "time"

// Challenge 实战挑战（用项目证明能力）
// 状态单向推进，abandoned 可从 not_started/in_progress 进入
type Challenge struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	SkillID         int64           `gorm:"index;not null" json:"skill_id"`
	Difficulty      Difficulty      `gorm:"size:20" json:"difficulty"`
	EstimatedHours  int             `json:"estimated_hours"`
	SkillsTaught    JSONArray       `gorm:"type:text" json:"skills_taught"`
	Prerequisites   JSONArray       `gorm:"type:text" json:"prerequisites"` // 按标题匹配同技能已完成挑战
	Unlocks         JSONArray       `gorm:"type:text" json:"unlocks"`       // 仅展示用
	Status          ChallengeStatus `gorm:"size:20;index;default:not_started" json:"status"`
	ProgressPercent int             `gorm:"default:0" json:"progress_percent"` // 用户自报，不保证单调
	TimeSpent       int             `gorm:"default:0" json:"time_spent"`       // 分钟累加器
	GithubLink      string          `gorm:"size:255" json:"github_link"`
	Notes           string          `gorm:"type:text" json:"notes"`
	StartedAt       *time.Time      `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Challenge) TableName() string {
	return "challenges"
}

// Obstacle 挑战中遇到的阻塞问题
// 解决一个障碍会同步产生一条 SkillEvidence
type Obstacle struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ChallengeID   int64          `gorm:"index;not null" json:"challenge_id"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Solution      string         `gorm:"type:text" json:"solution"`
	Insight       string         `gorm:"type:text" json:"insight"`
	TimeToSolve   int            `json:"time_to_solve"` // 分钟
	ResourcesUsed string         `gorm:"type:text" json:"resources_used"`
	Status        ObstacleStatus `gorm:"size:20;index;default:blocking" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	SolvedAt      *time.Time     `json:"solved_at"`
}

// TableName 指定表名
func (Obstacle) TableName() string {
	return "obstacles"
}

// SkillEvidence 能力证据，只追加，仅用于计数
type SkillEvidence struct {
	ID           int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	SkillID      int64        `gorm:"index;not null" json:"skill_id"`
	ChallengeID  int64        `gorm:"index;not null" json:"challenge_id"`
	EvidenceType EvidenceType `gorm:"size:32;not null" json:"evidence_type"`
	Description  string       `gorm:"type:text" json:"description"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (SkillEvidence) TableName() string {
	return "skill_evidence"
}

// DailyStreak 每日打卡记录，date 唯一
// 同一天重复记录时分钟/计数累加、备注追加
type DailyStreak struct {
	ID                   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Date                 string `gorm:"size:10;uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	MinutesWorked        int    `gorm:"default:0" json:"minutes_worked"`
	ChallengeID          *int64 `json:"challenge_id"`
	ObstaclesEncountered int    `gorm:"default:0" json:"obstacles_encountered"`
	ObstaclesSolved      int    `gorm:"default:0" json:"obstacles_solved"`
	MaintainedStreak     bool   `json:"maintained_streak"`
	Notes                string `gorm:"type:text" json:"notes"`
}

// TableName 指定表名
func (DailyStreak) TableName() string {
	return "daily_streaks"
}
