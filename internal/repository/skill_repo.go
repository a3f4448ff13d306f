package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// SkillRepository 技能仓储
type SkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository 创建仓储
func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// Create 新建技能
func (r *SkillRepository) Create(ctx context.Context, skill *schema.Skill) error {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return fmt.Errorf("创建技能失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取技能，未找到返回 ErrNotFound
func (r *SkillRepository) GetByID(ctx context.Context, id int64) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).First(&skill, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("技能 %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// GetByName 根据名称获取技能，未找到返回 nil
func (r *SkillRepository) GetByName(ctx context.Context, name string) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// GetAll 按状态获取技能，按最近复习排序
func (r *SkillRepository) GetAll(ctx context.Context, status schema.SkillStatus) ([]schema.Skill, error) {
	var skills []schema.Skill
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("last_reviewed DESC, created_at DESC").Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return skills, nil
}

// Update 保存技能整行
func (r *SkillRepository) Update(ctx context.Context, skill *schema.Skill) error {
	if err := r.db.WithContext(ctx).Save(skill).Error; err != nil {
		return fmt.Errorf("更新技能失败: %w", err)
	}
	return nil
}

// Exists 检查技能是否存在（写入前的外键校验）
func (r *SkillRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Skill{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("检查技能失败: %w", err)
	}
	return count > 0, nil
}

// CountDue 统计已到复习时间的活跃技能数量
// now 由调用方传入，避免依赖数据库端的时间表示
func (r *SkillRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Skill{}).
		Where("status = ? AND next_review IS NOT NULL AND next_review <= ?", schema.SkillStatusActive, now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计待复习技能失败: %w", err)
	}
	return count, nil
}
