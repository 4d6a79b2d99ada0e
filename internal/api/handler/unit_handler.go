package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

// UnitHandler 生产单元模块 HTTP 处理器
type UnitHandler struct {
	unitSvc service.UnitService
}

// NewUnitHandler 创建 UnitHandler
func NewUnitHandler(unitSvc service.UnitService) *UnitHandler {
	return &UnitHandler{unitSvc: unitSvc}
}

// ListUnits 获取单元列表
// GET /api/v1/units
func (h *UnitHandler) ListUnits(c *gin.Context) {
	includeHidden := c.Query("include_hidden") == "true"

	units, err := h.unitSvc.List(c.Request.Context(), includeHidden)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": units})
}

// GetUnit 获取单元详情
// GET /api/v1/units/:id
func (h *UnitHandler) GetUnit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	unit, err := h.unitSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, unit)
}

// CreateUnit 创建单元（同一事务写入可用班制与初始事件）
// POST /api/v1/units
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	var req dto.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	unit, err := h.unitSvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.Created(c, unit)
}

// ListEligiblePatterns 获取单元可用班制（含 is_active 标记）
// GET /api/v1/units/:id/patterns
func (h *UnitHandler) ListEligiblePatterns(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	patterns, err := h.unitSvc.ListEligiblePatterns(c.Request.Context(), id)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, gin.H{"list": patterns})
}

// handleUnitError 统一处理单元模块业务错误
func (h *UnitHandler) handleUnitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10003, "日期格式无效")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 30001, "生产单元不存在")
	case errors.Is(err, service.ErrPatternNotFound):
		response.BadRequest(c, 20001, "关联的班制不存在")
	default:
		response.InternalError(c)
	}
}
