package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// ChangeEventRepository 班制切换事件数据访问接口
// 事件日志按单元追加，排序键恒为 (effective_date, effective_hour, effective_minute)
type ChangeEventRepository interface {
	GetByID(ctx context.Context, id string) (*model.ShiftChangeEvent, error)
	// ListByUnit 取单元全部事件，按生效时刻升序
	ListByUnit(ctx context.Context, unitID string) ([]model.ShiftChangeEvent, error)
	// ListOnDate 取单元某日的事件，按 (hour, minute) 升序
	ListOnDate(ctx context.Context, unitID string, date time.Time) ([]model.ShiftChangeEvent, error)
	// ExistsAtInstant 检查指定时刻是否已有事件；excludeID 非空时排除该事件自身（用于改写校验）
	ExistsAtInstant(ctx context.Context, unitID string, date time.Time, hour, minute int, excludeID string) (bool, error)
	Create(ctx context.Context, event *model.ShiftChangeEvent) error
	Update(ctx context.Context, event *model.ShiftChangeEvent) error
	Delete(ctx context.Context, id string) error
}

type changeEventRepo struct {
	db *gorm.DB
}

// NewChangeEventRepo 创建 ChangeEventRepository 实例
func NewChangeEventRepo(db *gorm.DB) ChangeEventRepository {
	return &changeEventRepo{db: db}
}

func (r *changeEventRepo) GetByID(ctx context.Context, id string) (*model.ShiftChangeEvent, error) {
	var event model.ShiftChangeEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *changeEventRepo) ListByUnit(ctx context.Context, unitID string) ([]model.ShiftChangeEvent, error) {
	var events []model.ShiftChangeEvent
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("effective_date ASC, effective_hour ASC, effective_minute ASC").
		Find(&events).Error
	return events, err
}

func (r *changeEventRepo) ListOnDate(ctx context.Context, unitID string, date time.Time) ([]model.ShiftChangeEvent, error) {
	var events []model.ShiftChangeEvent
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND effective_date = ?", unitID, date.Format(model.DateOnly)).
		Order("effective_hour ASC, effective_minute ASC").
		Find(&events).Error
	return events, err
}

func (r *changeEventRepo) ExistsAtInstant(ctx context.Context, unitID string, date time.Time, hour, minute int, excludeID string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&model.ShiftChangeEvent{}).
		Where("unit_id = ? AND effective_date = ? AND effective_hour = ? AND effective_minute = ?",
			unitID, date.Format(model.DateOnly), hour, minute)

	if excludeID != "" {
		db = db.Where("event_id <> ?", excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *changeEventRepo) Create(ctx context.Context, event *model.ShiftChangeEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *changeEventRepo) Update(ctx context.Context, event *model.ShiftChangeEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *changeEventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.ShiftChangeEvent{}).Error
}
