package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出工资周发放明细
// GET /api/v1/payroll-weeks/:id/export
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	attachment(c, filename, contentTypeXLSX)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportCalendar 导出某年工资周日历
// GET /api/v1/payroll-weeks/calendar.ics?year=2025
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	year, ok := bindYear(c)
	if !ok {
		return
	}
	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), year)
	if err != nil {
		response.FromError(c, err)
		return
	}

	attachment(c, filename, contentTypeICS)
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}
