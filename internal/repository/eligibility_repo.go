package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// EligibilityRepository 单元可用班制数据访问接口
// is_active 列是派生缓存，仅允许经由 SetActive 重写
type EligibilityRepository interface {
	ListByUnit(ctx context.Context, unitID string) ([]model.UnitPatternEligibility, error)
	Exists(ctx context.Context, unitID, patternID string) (bool, error)
	// SetActive 在单个事务内清除单元全部 is_active 标记并置位指定班制
	SetActive(ctx context.Context, unitID, patternID string) error
}

type eligibilityRepo struct {
	db *gorm.DB
}

// NewEligibilityRepo 创建 EligibilityRepository 实例
func NewEligibilityRepo(db *gorm.DB) EligibilityRepository {
	return &eligibilityRepo{db: db}
}

func (r *eligibilityRepo) ListByUnit(ctx context.Context, unitID string) ([]model.UnitPatternEligibility, error) {
	var rows []model.UnitPatternEligibility
	err := r.db.WithContext(ctx).
		Preload("Pattern").
		Where("unit_id = ?", unitID).
		Order("sort_order ASC").
		Find(&rows).Error
	return rows, err
}

func (r *eligibilityRepo) Exists(ctx context.Context, unitID, patternID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UnitPatternEligibility{}).
		Where("unit_id = ? AND pattern_id = ?", unitID, patternID).
		Count(&count).Error
	return count > 0, err
}

func (r *eligibilityRepo) SetActive(ctx context.Context, unitID, patternID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.UnitPatternEligibility{}).
			Where("unit_id = ? AND is_active = ?", unitID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.UnitPatternEligibility{}).
			Where("unit_id = ? AND pattern_id = ?", unitID, patternID).
			Update("is_active", true).Error
	})
}
