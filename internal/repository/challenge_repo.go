package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// ChallengeRepository 挑战仓储
type ChallengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository 创建仓储
func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create 新建挑战
func (r *ChallengeRepository) Create(ctx context.Context, c *schema.Challenge) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("创建挑战失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取挑战，未找到返回 ErrNotFound
func (r *ChallengeRepository) GetByID(ctx context.Context, id int64) (*schema.Challenge, error) {
	var c schema.Challenge
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("挑战 %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("查询挑战失败: %w", err)
	}
	return &c, nil
}

// List 按技能/状态过滤挑战，按创建时间倒序
// skillID=0 或 status="" 表示不过滤该维度
func (r *ChallengeRepository) List(ctx context.Context, skillID int64, status schema.ChallengeStatus) ([]schema.Challenge, error) {
	var challenges []schema.Challenge
	q := r.db.WithContext(ctx)
	if skillID > 0 {
		q = q.Where("skill_id = ?", skillID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("查询挑战失败: %w", err)
	}
	return challenges, nil
}

// Update 保存挑战整行
func (r *ChallengeRepository) Update(ctx context.Context, c *schema.Challenge) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("更新挑战失败: %w", err)
	}
	return nil
}

// CompletedTitles 技能下已完成挑战的标题（前置条件匹配用）
func (r *ChallengeRepository) CompletedTitles(ctx context.Context, skillID int64) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).Model(&schema.Challenge{}).
		Where("skill_id = ? AND status = ?", skillID, schema.ChallengeCompleted).
		Pluck("title", &titles).Error
	if err != nil {
		return nil, fmt.Errorf("查询已完成挑战失败: %w", err)
	}
	return titles, nil
}

// ChallengeStats 技能下挑战的聚合统计
type ChallengeStats struct {
	Total        int64
	Completed    int64
	InProgress   int64
	TotalMinutes int64
}

// StatsForSkill 聚合技能下的挑战
func (r *ChallengeRepository) StatsForSkill(ctx context.Context, skillID int64) (*ChallengeStats, error) {
	var stats ChallengeStats
	row := r.db.WithContext(ctx).Model(&schema.Challenge{}).
		Select(
			"COUNT(*), "+
				"COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(time_spent), 0)").
		Where("skill_id = ?", skillID).
		Row()
	if err := row.Scan(&stats.Total, &stats.Completed, &stats.InProgress, &stats.TotalMinutes); err != nil {
		return nil, fmt.Errorf("统计挑战失败: %w", err)
	}
	return &stats, nil
}
