package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// PatternRepository 班制数据访问接口（对本核心只读，由外部后台维护）
type PatternRepository interface {
	GetByID(ctx context.Context, id string) (*model.ShiftPattern, error)
	List(ctx context.Context, includeHidden bool) ([]model.ShiftPattern, error)
}

type patternRepo struct {
	db *gorm.DB
}

// NewPatternRepo 创建 PatternRepository 实例
func NewPatternRepo(db *gorm.DB) PatternRepository {
	return &patternRepo{db: db}
}

func (r *patternRepo) GetByID(ctx context.Context, id string) (*model.ShiftPattern, error) {
	var pattern model.ShiftPattern
	err := r.db.WithContext(ctx).
		Preload("TeamAssignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("TeamAssignments.Team").
		Where("pattern_id = ?", id).
		First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *patternRepo) List(ctx context.Context, includeHidden bool) ([]model.ShiftPattern, error) {
	var patterns []model.ShiftPattern
	db := r.db.WithContext(ctx)
	if !includeHidden {
		db = db.Where("is_hidden = ?", false)
	}
	err := db.Order("name ASC").Find(&patterns).Error
	return patterns, err
}

// ── Team Repository ──

// TeamRepository 班组数据访问接口（对本核心只读）
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*model.ShiftTeam, error)
	List(ctx context.Context, includeHidden bool) ([]model.ShiftTeam, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.ShiftTeam, error) {
	var team model.ShiftTeam
	err := r.db.WithContext(ctx).Where("team_id = ?", id).First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, includeHidden bool) ([]model.ShiftTeam, error) {
	var teams []model.ShiftTeam
	db := r.db.WithContext(ctx)
	if !includeHidden {
		db = db.Where("is_hidden = ?", false)
	}
	err := db.Order("name ASC").Find(&teams).Error
	return teams, err
}
