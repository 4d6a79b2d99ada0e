package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

// ChangeHandler 班制切换变更模块 HTTP 处理器
// 外层传入的动态负载在此解析为封闭的强类型请求，引擎只见强类型记录
type ChangeHandler struct {
	changeSvc service.ChangeService
}

// NewChangeHandler 创建 ChangeHandler
func NewChangeHandler(changeSvc service.ChangeService) *ChangeHandler {
	return &ChangeHandler{changeSvc: changeSvc}
}

// ApplyActiveShift 切换单元班制（指定时刻已有事件则改写，否则新增）
// PATCH /api/v1/units/:id/active-shift
func (h *ChangeHandler) ApplyActiveShift(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	var req dto.ActiveShiftPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.changeSvc.ApplyActiveShift(c.Request.Context(), unitID, &req, OperatorID(c))
	if err != nil {
		h.handleChangeError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateChange 改写既有切换事件（时刻和/或目标班制）
// PUT /api/v1/shift-changes/:id
func (h *ChangeHandler) UpdateChange(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "事件ID不能为空")
		return
	}

	var req dto.UpdateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.changeSvc.UpdateChange(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleChangeError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteChange 删除切换事件（初始事件受保护）
// DELETE /api/v1/shift-changes/:id
func (h *ChangeHandler) DeleteChange(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "事件ID不能为空")
		return
	}

	if err := h.changeSvc.DeleteChange(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleChangeError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListChanges 单元全部切换事件
// GET /api/v1/units/:id/shift-changes
func (h *ChangeHandler) ListChanges(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	result, err := h.changeSvc.ListChanges(c.Request.Context(), unitID)
	if err != nil {
		h.handleChangeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// handleChangeError 统一处理变更模块业务错误
// 冲突原因精确区分：重复时刻 / 班制不可用 / 受保护时刻，便于操作员修正请求
func (h *ChangeHandler) handleChangeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10003, "日期格式无效")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 30001, "生产单元不存在")
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 40004, "切换事件不存在")
	case errors.Is(err, service.ErrChangeConflict):
		response.Conflict(c, 40001, "该时刻已存在切换事件")
	case errors.Is(err, service.ErrInvalidPattern):
		response.Conflict(c, 40002, "该单元不可使用此班制")
	case errors.Is(err, service.ErrGenesisProtected):
		response.Conflict(c, 40003, "初始事件受保护，不可在该时刻操作")
	case errors.Is(err, service.ErrNoHistory):
		response.UnprocessableEntity(c, 30002, "单元事件日志为空，初始事件缺失")
	default:
		response.InternalError(c)
	}
}
