package handler

import "shiftrota/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Pattern    *PatternHandler
	Team       *TeamHandler
	Unit       *UnitHandler
	Resolution *ResolutionHandler
	Change     *ChangeHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Pattern:    NewPatternHandler(svc.Pattern),
		Team:       NewTeamHandler(svc.Team),
		Unit:       NewUnitHandler(svc.Unit),
		Resolution: NewResolutionHandler(svc.Resolution),
		Change:     NewChangeHandler(svc.Change),
		Export:     NewExportHandler(svc.Export),
	}
}
