package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRota 导出单元某月的轮班表为 Excel
// GET /api/v1/export/rota?unit=&year=&month=
func (h *ExportHandler) ExportRota(c *gin.Context) {
	var req dto.ExportRotaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportMonthRota(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachmentHeaders(c, filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportICS 导出单元某日期范围的排班日历
// GET /api/v1/export/ics?unit=&from=&to=
func (h *ExportHandler) ExportICS(c *gin.Context) {
	var req dto.ExportICSRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	content, filename, err := h.exportSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachmentHeaders(c, filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}

// setAttachmentHeaders 设置下载响应头（文件名按 RFC 5987 编码以兼容中文）
func setAttachmentHeaders(c *gin.Context, filename string) {
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10003, "日期格式无效")
	case errors.Is(err, service.ErrExportRangeInvalid):
		response.BadRequest(c, 10006, "导出时间范围无效")
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
