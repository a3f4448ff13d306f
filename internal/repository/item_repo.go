package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// ItemRepository 学习条目仓储
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建仓储
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create 新建条目
func (r *ItemRepository) Create(ctx context.Context, item *schema.LearningItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("创建学习条目失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取条目，未找到返回 ErrNotFound
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*schema.LearningItem, error) {
	var item schema.LearningItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("学习条目 %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("查询学习条目失败: %w", err)
	}
	return &item, nil
}

// Update 保存条目整行
func (r *ItemRepository) Update(ctx context.Context, item *schema.LearningItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("更新学习条目失败: %w", err)
	}
	return nil
}

// Due 获取已到期条目（next_review 为空或 ≤ now）
// 薄弱且逾期的条目排在最前：next_review 升序、confidence 升序
// skillID=0 时跨技能查询，且只看活跃技能
func (r *ItemRepository) Due(ctx context.Context, skillID int64, limit int, now time.Time) ([]schema.LearningItem, error) {
	var items []schema.LearningItem
	q := r.db.WithContext(ctx).Model(&schema.LearningItem{}).
		Where("next_review IS NULL OR next_review <= ?", now)

	if skillID > 0 {
		q = q.Where("skill_id = ?", skillID)
	} else {
		q = q.Where("skill_id IN (?)",
			r.db.Model(&schema.Skill{}).Select("id").Where("status = ?", schema.SkillStatusActive))
	}

	err := q.Order("next_review ASC, confidence_level ASC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询待复习条目失败: %w", err)
	}
	return items, nil
}

// Search 在问题/答案/标签上做子串匹配
// 排序只按（confidence 升序、last_reviewed 倒序），不做额外打分
func (r *ItemRepository) Search(ctx context.Context, keyword string, skillID int64, limit int) ([]schema.LearningItem, error) {
	pattern := "%" + keyword + "%"
	var items []schema.LearningItem
	q := r.db.WithContext(ctx).Model(&schema.LearningItem{}).
		Where("question LIKE ? OR answer LIKE ? OR tags LIKE ?", pattern, pattern, pattern)

	if skillID > 0 {
		q = q.Where("skill_id = ?", skillID)
	} else {
		q = q.Where("skill_id IN (?)",
			r.db.Model(&schema.Skill{}).Select("id").Where("status = ?", schema.SkillStatusActive))
	}

	err := q.Order("confidence_level ASC, last_reviewed DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("搜索学习条目失败: %w", err)
	}
	return items, nil
}

// ItemStats 技能下条目的聚合统计
type ItemStats struct {
	TotalItems    int64
	AvgConfidence float64
	TotalCorrect  int64
	TotalReviews  int64
}

// StatsForSkill 聚合技能下所有条目
func (r *ItemRepository) StatsForSkill(ctx context.Context, skillID int64) (*ItemStats, error) {
	var stats ItemStats
	row := r.db.WithContext(ctx).Model(&schema.LearningItem{}).
		Select("COUNT(*), COALESCE(AVG(confidence_level), 0), COALESCE(SUM(times_correct), 0), COALESCE(SUM(times_reviewed), 0)").
		Where("skill_id = ?", skillID).
		Row()
	if err := row.Scan(&stats.TotalItems, &stats.AvgConfidence, &stats.TotalCorrect, &stats.TotalReviews); err != nil {
		return nil, fmt.Errorf("统计学习条目失败: %w", err)
	}
	return &stats, nil
}

// CountDue 统计全部已到期条目数量
func (r *ItemRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.LearningItem{}).
		Where("next_review IS NOT NULL AND next_review <= ?", now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计待复习条目失败: %w", err)
	}
	return count, nil
}
