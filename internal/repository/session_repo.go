package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// SessionRepository 学习会话仓储
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建仓储
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 追加会话记录
func (r *SessionRepository) Create(ctx context.Context, session *schema.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("创建会话失败: %w", err)
	}
	return nil
}

// RecentForSkill 获取技能最近的会话，按时间倒序
func (r *SessionRepository) RecentForSkill(ctx context.Context, skillID int64, limit int) ([]schema.Session, error) {
	var sessions []schema.Session
	err := r.db.WithContext(ctx).
		Where("skill_id = ?", skillID).
		Order("session_date DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}
	return sessions, nil
}

// SkillTimeStat 按技能聚合的学习时长
type SkillTimeStat struct {
	SkillName    string
	SessionCount int
	TotalMinutes int
}

// StatsSince 统计 since 之后的会话数与总分钟数
func (r *SessionRepository) StatsSince(ctx context.Context, since time.Time) (sessions int64, minutes int64, err error) {
	row := r.db.WithContext(ctx).Model(&schema.Session{}).
		Select("COUNT(*), COALESCE(SUM(duration_minutes), 0)").
		Where("session_date >= ?", since).
		Row()
	if scanErr := row.Scan(&sessions, &minutes); scanErr != nil {
		return 0, 0, fmt.Errorf("统计会话失败: %w", scanErr)
	}
	return sessions, minutes, nil
}

// TimeBySkillSince 统计 since 之后各技能的时长分布，按总时长倒序
func (r *SessionRepository) TimeBySkillSince(ctx context.Context, since time.Time) ([]SkillTimeStat, error) {
	var stats []SkillTimeStat
	err := r.db.WithContext(ctx).Model(&schema.Session{}).
		Select("skills.name AS skill_name, COUNT(*) AS session_count, COALESCE(SUM(sessions.duration_minutes), 0) AS total_minutes").
		Joins("JOIN skills ON skills.id = sessions.skill_id").
		Where("sessions.session_date >= ?", since).
		Group("skills.name").
		Order("total_minutes DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("统计技能时长失败: %w", err)
	}
	return stats, nil
}

// CountForSkill 统计技能的会话数量
func (r *SessionRepository) CountForSkill(ctx context.Context, skillID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Session{}).Where("skill_id = ?", skillID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计会话失败: %w", err)
	}
	return count, nil
}
