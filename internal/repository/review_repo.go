package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// ReviewRepository 复习事件仓储（只追加）
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建仓储
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create 追加复习事件
func (r *ReviewRepository) Create(ctx context.Context, event *schema.ReviewEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("记录复习事件失败: %w", err)
	}
	return nil
}

// AccuracySince 统计 since 之后的复习总数与正确数
func (r *ReviewRepository) AccuracySince(ctx context.Context, since time.Time) (total int64, correct int64, err error) {
	row := r.db.WithContext(ctx).Model(&schema.ReviewEvent{}).
		Select("COUNT(*), COALESCE(SUM(CASE WHEN was_correct THEN 1 ELSE 0 END), 0)").
		Where("review_date >= ?", since).
		Row()
	if scanErr := row.Scan(&total, &correct); scanErr != nil {
		return 0, 0, fmt.Errorf("统计复习准确率失败: %w", scanErr)
	}
	return total, correct, nil
}
