package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/MindMirror/internal/schema"
	"gorm.io/gorm"
)

// StreakRepository 每日打卡仓储
type StreakRepository struct {
	db *gorm.DB
}

// NewStreakRepository 创建仓储
func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetByDate 取某天的打卡记录，未找到返回 nil
func (r *StreakRepository) GetByDate(ctx context.Context, date string) (*schema.DailyStreak, error) {
	var s schema.DailyStreak
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询打卡记录失败: %w", err)
	}
	return &s, nil
}

// Create 新建打卡记录
func (r *StreakRepository) Create(ctx context.Context, s *schema.DailyStreak) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("创建打卡记录失败: %w", err)
	}
	return nil
}

// Update 保存打卡记录整行
func (r *StreakRepository) Update(ctx context.Context, s *schema.DailyStreak) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("更新打卡记录失败: %w", err)
	}
	return nil
}

// DatesDesc 维持住连胜的全部日期，倒序
func (r *StreakRepository) DatesDesc(ctx context.Context) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&schema.DailyStreak{}).
		Where("maintained_streak = ?", true).
		Order("date DESC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("查询打卡日期失败: %w", err)
	}
	return dates, nil
}
