package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// ObstacleRepository 障碍仓储
type ObstacleRepository struct {
	db *gorm.DB
}

// NewObstacleRepository 创建仓储
func NewObstacleRepository(db *gorm.DB) *ObstacleRepository {
	return &ObstacleRepository{db: db}
}

// Create 记录障碍
func (r *ObstacleRepository) Create(ctx context.Context, o *schema.Obstacle) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("记录障碍失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取障碍，未找到返回 ErrNotFound
func (r *ObstacleRepository) GetByID(ctx context.Context, id int64) (*schema.Obstacle, error) {
	var o schema.Obstacle
	err := r.db.WithContext(ctx).First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("障碍 %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("查询障碍失败: %w", err)
	}
	return &o, nil
}

// ForChallenge 获取挑战的全部障碍，按创建时间倒序
func (r *ObstacleRepository) ForChallenge(ctx context.Context, challengeID int64) ([]schema.Obstacle, error) {
	var obstacles []schema.Obstacle
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at DESC").
		Find(&obstacles).Error
	if err != nil {
		return nil, fmt.Errorf("查询障碍失败: %w", err)
	}
	return obstacles, nil
}

// Update 保存障碍整行
func (r *ObstacleRepository) Update(ctx context.Context, o *schema.Obstacle) error {
	if err := r.db.WithContext(ctx).Save(o).Error; err != nil {
		return fmt.Errorf("更新障碍失败: %w", err)
	}
	return nil
}

// ObstacleHit 带挑战/技能名的障碍搜索结果
type ObstacleHit struct {
	schema.Obstacle
	ChallengeTitle string
	SkillName      string
}

// Search 在描述/方案上做子串匹配（个人 Stack Overflow）
func (r *ObstacleRepository) Search(ctx context.Context, keyword string) ([]ObstacleHit, error) {
	pattern := "%" + keyword + "%"
	var hits []ObstacleHit
	err := r.db.WithContext(ctx).Model(&schema.Obstacle{}).
		Select("obstacles.*, challenges.title AS challenge_title, skills.name AS skill_name").
		Joins("JOIN challenges ON challenges.id = obstacles.challenge_id").
		Joins("JOIN skills ON skills.id = challenges.skill_id").
		Where("obstacles.description LIKE ? OR obstacles.solution LIKE ?", pattern, pattern).
		Order("obstacles.solved_at DESC").
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("搜索障碍失败: %w", err)
	}
	return hits, nil
}

// ObstacleStats 技能下障碍的聚合统计
type ObstacleStats struct {
	Total  int64
	Solved int64
}

// StatsForSkill 聚合技能下全部挑战的障碍
func (r *ObstacleRepository) StatsForSkill(ctx context.Context, skillID int64) (*ObstacleStats, error) {
	var stats ObstacleStats
	row := r.db.WithContext(ctx).Model(&schema.Obstacle{}).
		Select("COUNT(*), COALESCE(SUM(CASE WHEN obstacles.status = 'solved' THEN 1 ELSE 0 END), 0)").
		Joins("JOIN challenges ON challenges.id = obstacles.challenge_id").
		Where("challenges.skill_id = ?", skillID).
		Row()
	if err := row.Scan(&stats.Total, &stats.Solved); err != nil {
		return nil, fmt.Errorf("统计障碍失败: %w", err)
	}
	return &stats, nil
}
