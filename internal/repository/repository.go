package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Pattern     PatternRepository
	Team        TeamRepository
	Span        SpanRepository
	Unit        UnitRepository
	Eligibility EligibilityRepository
	ChangeEvent ChangeEventRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Pattern:     NewPatternRepo(db),
		Team:        NewTeamRepo(db),
		Span:        NewSpanRepo(db),
		Unit:        NewUnitRepo(db),
		Eligibility: NewEligibilityRepo(db),
		ChangeEvent: NewChangeEventRepo(db),
	}
}
