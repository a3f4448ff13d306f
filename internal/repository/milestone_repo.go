package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// MilestoneRepository 里程碑仓储
type MilestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository 创建仓储
func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create 新建里程碑
func (r *MilestoneRepository) Create(ctx context.Context, m *schema.Milestone) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("创建里程碑失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取里程碑，未找到返回 ErrNotFound
func (r *MilestoneRepository) GetByID(ctx context.Context, id int64) (*schema.Milestone, error) {
	var m schema.Milestone
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("里程碑 %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("查询里程碑失败: %w", err)
	}
	return &m, nil
}

// ForSkill 获取技能的里程碑
// 默认只看未完成的；includeCompleted 时完成的排在后面
func (r *MilestoneRepository) ForSkill(ctx context.Context, skillID int64, includeCompleted bool) ([]schema.Milestone, error) {
	var milestones []schema.Milestone
	q := r.db.WithContext(ctx).Where("skill_id = ?", skillID)
	if includeCompleted {
		q = q.Order("completed ASC, target_date ASC")
	} else {
		q = q.Where("completed = ?", false).Order("target_date ASC")
	}
	if err := q.Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("查询里程碑失败: %w", err)
	}
	return milestones, nil
}

// Update 保存里程碑整行
func (r *MilestoneRepository) Update(ctx context.Context, m *schema.Milestone) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("更新里程碑失败: %w", err)
	}
	return nil
}
