package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

// PatternHandler 班制模板模块 HTTP 处理器（只读）
type PatternHandler struct {
	patternSvc service.PatternService
}

// NewPatternHandler 创建 PatternHandler
func NewPatternHandler(patternSvc service.PatternService) *PatternHandler {
	return &PatternHandler{patternSvc: patternSvc}
}

// ListPatterns 获取班制列表
// GET /api/v1/patterns
func (h *PatternHandler) ListPatterns(c *gin.Context) {
	includeHidden := c.Query("include_hidden") == "true"

	patterns, err := h.patternSvc.List(c.Request.Context(), includeHidden)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, gin.H{"list": patterns})
}

// GetPattern 获取班制详情（含班组关联）
// GET /api/v1/patterns/:id
func (h *PatternHandler) GetPattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班制ID不能为空")
		return
	}

	pattern, err := h.patternSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, pattern)
}

// ListSpans 获取班制的排班时段
// GET /api/v1/patterns/:id/spans?week_index=&day_of_week=
func (h *PatternHandler) ListSpans(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班制ID不能为空")
		return
	}

	var req dto.SpanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	spans, err := h.patternSvc.ListSpans(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, gin.H{"list": spans})
}

// handlePatternError 统一处理班制模块业务错误
func (h *PatternHandler) handlePatternError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 20001, "班制不存在")
	case errors.Is(err, service.ErrInvalidConfiguration):
		response.UnprocessableEntity(c, 20003, "班制模板配置无效")
	default:
		response.InternalError(c)
	}
}

// ── 班组模块 ──

// TeamHandler 班组模块 HTTP 处理器（只读）
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams 获取班组列表
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	includeHidden := c.Query("include_hidden") == "true"

	teams, err := h.teamSvc.List(c.Request.Context(), includeHidden)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": teams})
}

// GetTeam 获取班组详情
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班组ID不能为空")
		return
	}

	team, err := h.teamSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			response.NotFound(c, 20002, "班组不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, team)
}
