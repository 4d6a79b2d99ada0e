package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// UnitRepository 生产单元数据访问接口
type UnitRepository interface {
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	List(ctx context.Context, includeHidden bool) ([]model.Unit, error)
	// CreateWithGenesis 在单个事务内创建单元、可用班制与初始事件
	CreateWithGenesis(ctx context.Context, unit *model.Unit, eligibilities []model.UnitPatternEligibility, genesis *model.ShiftChangeEvent) error
}

type unitRepo struct {
	db *gorm.DB
}

// NewUnitRepo 创建 UnitRepository 实例
func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.WithContext(ctx).Where("unit_id = ?", id).First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) List(ctx context.Context, includeHidden bool) ([]model.Unit, error) {
	var units []model.Unit
	db := r.db.WithContext(ctx)
	if !includeHidden {
		db = db.Where("is_hidden = ?", false)
	}
	err := db.Order("sort_order ASC, name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepo) CreateWithGenesis(ctx context.Context, unit *model.Unit, eligibilities []model.UnitPatternEligibility, genesis *model.ShiftChangeEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(unit).Error; err != nil {
			return err
		}
		for i := range eligibilities {
			eligibilities[i].UnitID = unit.UnitID
		}
		if len(eligibilities) > 0 {
			if err := tx.Create(&eligibilities).Error; err != nil {
				return err
			}
		}
		genesis.UnitID = unit.UnitID
		return tx.Create(genesis).Error
	})
}
