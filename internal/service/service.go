package service

import (
	"go.uber.org/zap"

	"shiftrota/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Pattern    PatternService
	Team       TeamService
	Unit       UnitService
	Resolution ResolutionService
	Change     ChangeService
	Export     ExportService
}

// NewService 创建 Service 聚合
// cache 与 notifier 允许为 nil（Redis 缺席时解析退化为全量回放、通知静默跳过）
func NewService(
	repo *repository.Repository,
	cache BaseCache,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		Pattern:    NewPatternService(repo, logger),
		Team:       NewTeamService(repo, logger),
		Unit:       NewUnitService(repo, logger),
		Resolution: NewResolutionService(repo, cache, logger),
		Change:     NewChangeService(repo, cache, notifier, logger),
		Export:     NewExportService(repo, logger),
	}
}
