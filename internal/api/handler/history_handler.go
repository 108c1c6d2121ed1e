package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// HistoryHandler 历史归档只读 HTTP 处理器
type HistoryHandler struct {
	archiveSvc service.ArchiveService
}

// NewHistoryHandler 创建 HistoryHandler
func NewHistoryHandler(archiveSvc service.ArchiveService) *HistoryHandler {
	return &HistoryHandler{archiveSvc: archiveSvc}
}

// ListProjects 已归档工程列表
// GET /api/v1/historial/projects?q=&page=1&page_size=20
func (h *HistoryHandler) ListProjects(c *gin.Context) {
	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.archiveSvc.ListProjectHistory(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetProject 已归档工程详情（含快照）
// GET /api/v1/historial/projects/:id
func (h *HistoryHandler) GetProject(c *gin.Context) {
	item, err := h.archiveSvc.GetProjectHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// ListProspects 已归档潜在客户列表
// GET /api/v1/historial/prospects?q=&reason=converted&page=1&page_size=20
func (h *HistoryHandler) ListProspects(c *gin.Context) {
	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.archiveSvc.ListProspectHistory(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetProspect 已归档潜在客户详情
// GET /api/v1/historial/prospects/:id
func (h *HistoryHandler) GetProspect(c *gin.Context) {
	item, err := h.archiveSvc.GetProspectHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}
