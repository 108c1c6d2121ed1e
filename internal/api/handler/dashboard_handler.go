package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Summary 仪表盘汇总
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, summary)
}
