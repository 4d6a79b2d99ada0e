package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

// ResolutionHandler 时间解析模块 HTTP 处理器
type ResolutionHandler struct {
	resolutionSvc service.ResolutionService
}

// NewResolutionHandler 创建 ResolutionHandler
func NewResolutionHandler(resolutionSvc service.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{resolutionSvc: resolutionSvc}
}

// GetActivePattern 解析某时刻生效的班制
// GET /api/v1/resolution/active-pattern?unit=&date=&hour=&minute=
func (h *ResolutionHandler) GetActivePattern(c *gin.Context) {
	var req dto.ActivePatternRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.resolutionSvc.GetActivePattern(c.Request.Context(), &req)
	if err != nil {
		h.handleResolutionError(c, err)
		return
	}

	response.OK(c, result)
}

// GetActiveTeam 解析某小时值班的班组
// GET /api/v1/resolution/active-team?pattern=&date=&hour=
func (h *ResolutionHandler) GetActiveTeam(c *gin.Context) {
	var req dto.ActiveTeamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.resolutionSvc.GetActiveTeam(c.Request.Context(), &req)
	if err != nil {
		h.handleResolutionError(c, err)
		return
	}

	// team_id 为 null 表示无人值守，是合法结果而非错误
	response.OK(c, result)
}

// GetDaySummary 单日概要：基准班制 + 当日全部切换事件
// GET /api/v1/resolution/day-summary?unit=&date=
func (h *ResolutionHandler) GetDaySummary(c *gin.Context) {
	var req dto.DaySummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.resolutionSvc.GetDaySummary(c.Request.Context(), &req)
	if err != nil {
		h.handleResolutionError(c, err)
		return
	}

	response.OK(c, result)
}

// handleResolutionError 统一处理解析模块业务错误
func (h *ResolutionHandler) handleResolutionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10003, "日期格式无效")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 30001, "生产单元不存在")
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 20001, "班制不存在")
	case errors.Is(err, service.ErrNoHistory):
		response.UnprocessableEntity(c, 30002, "单元事件日志为空，初始事件缺失")
	case errors.Is(err, service.ErrInvalidConfiguration):
		response.UnprocessableEntity(c, 20003, "班制模板配置无效")
	default:
		response.InternalError(c)
	}
}
