package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// SpanRepository 排班时段数据访问接口（对本核心只读）
type SpanRepository interface {
	// ListBySlot 取某班制周期内 (weekIndex, dayOfWeek) 槽位的全部时段，按 sort_order 升序
	ListBySlot(ctx context.Context, patternID string, weekIndex, dayOfWeek int) ([]model.ScheduleSpan, error)
	// ListByPattern 取某班制的全部时段，可按周索引/星期过滤
	ListByPattern(ctx context.Context, patternID string, weekIndex, dayOfWeek *int) ([]model.ScheduleSpan, error)
}

type spanRepo struct {
	db *gorm.DB
}

// NewSpanRepo 创建 SpanRepository 实例
func NewSpanRepo(db *gorm.DB) SpanRepository {
	return &spanRepo{db: db}
}

func (r *spanRepo) ListBySlot(ctx context.Context, patternID string, weekIndex, dayOfWeek int) ([]model.ScheduleSpan, error) {
	var spans []model.ScheduleSpan
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("pattern_id = ? AND week_index = ? AND day_of_week = ?", patternID, weekIndex, dayOfWeek).
		Order("sort_order ASC").
		Find(&spans).Error
	return spans, err
}

func (r *spanRepo) ListByPattern(ctx context.Context, patternID string, weekIndex, dayOfWeek *int) ([]model.ScheduleSpan, error) {
	var spans []model.ScheduleSpan
	db := r.db.WithContext(ctx).Where("pattern_id = ?", patternID)

	if weekIndex != nil {
		db = db.Where("week_index = ?", *weekIndex)
	}
	if dayOfWeek != nil {
		db = db.Where("day_of_week = ?", *dayOfWeek)
	}

	err := db.Preload("Team").
		Order("week_index ASC, day_of_week ASC, sort_order ASC").
		Find(&spans).Error
	return spans, err
}
