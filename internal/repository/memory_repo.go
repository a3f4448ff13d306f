package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FactRepository 记忆事实仓储
type FactRepository struct {
	db *gorm.DB
}

// NewFactRepository 创建仓储
func NewFactRepository(db *gorm.DB) *FactRepository {
	return &FactRepository{db: db}
}

// Create 记录事实
func (r *FactRepository) Create(ctx context.Context, f *schema.Fact) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("保存事实失败: %w", err)
	}
	return nil
}

// Search 在事实/实体上做子串匹配（向量库不可用时的降级路径）
func (r *FactRepository) Search(ctx context.Context, keyword string, limit int) ([]schema.Fact, error) {
	pattern := "%" + keyword + "%"
	var facts []schema.Fact
	err := r.db.WithContext(ctx).
		Where("fact LIKE ? OR entity LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("搜索事实失败: %w", err)
	}
	return facts, nil
}

// Recent 最近的事实
func (r *FactRepository) Recent(ctx context.Context, limit int) ([]schema.Fact, error) {
	var facts []schema.Fact
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("查询事实失败: %w", err)
	}
	return facts, nil
}

// AboutEntity 某个实体的全部事实
func (r *FactRepository) AboutEntity(ctx context.Context, entity string) ([]schema.Fact, error) {
	var facts []schema.Fact
	err := r.db.WithContext(ctx).
		Where("entity = ?", entity).
		Order("created_at DESC").
		Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("查询事实失败: %w", err)
	}
	return facts, nil
}

// PreferenceRepository 用户偏好仓储
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository 创建仓储
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Upsert 插入或覆盖偏好
func (r *PreferenceRepository) Upsert(ctx context.Context, p *schema.Preference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("保存偏好失败: %w", err)
	}
	return nil
}

// Get 读取偏好值，未设置返回空串
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	var p schema.Preference
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("读取偏好失败: %w", err)
	}
	return p.Value, nil
}

// GoalRepository 目标仓储
type GoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository 创建仓储
func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create 新建目标
func (r *GoalRepository) Create(ctx context.Context, g *schema.Goal) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("创建目标失败: %w", err)
	}
	return nil
}

// Active 活跃目标，按创建时间倒序
func (r *GoalRepository) Active(ctx context.Context) ([]schema.Goal, error) {
	var goals []schema.Goal
	err := r.db.WithContext(ctx).
		Where("status = ?", schema.GoalStatusActive).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("查询目标失败: %w", err)
	}
	return goals, nil
}

// Complete 完成目标（单向）
func (r *GoalRepository) Complete(ctx context.Context, id int64) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&schema.Goal{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       schema.GoalStatusCompleted,
			"completed_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("完成目标失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("目标 %d: %w", id, ErrNotFound)
	}
	return nil
}
