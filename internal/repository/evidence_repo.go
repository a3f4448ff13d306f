package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// EvidenceRepository 技能证据仓储（只追加，只做计数）
type EvidenceRepository struct {
	db *gorm.DB
}

// NewEvidenceRepository 创建仓储
func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Create 追加证据
func (r *EvidenceRepository) Create(ctx context.Context, e *schema.SkillEvidence) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("记录技能证据失败: %w", err)
	}
	return nil
}

// CountForSkill 统计技能的证据数量
func (r *EvidenceRepository) CountForSkill(ctx context.Context, skillID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.SkillEvidence{}).
		Where("skill_id = ?", skillID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计技能证据失败: %w", err)
	}
	return count, nil
}
