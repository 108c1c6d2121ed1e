package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// ProspectHandler 潜在客户 HTTP 处理器
type ProspectHandler struct {
	prospectSvc service.ProspectService
	archiveSvc  service.ArchiveService
}

// NewProspectHandler 创建 ProspectHandler
func NewProspectHandler(prospectSvc service.ProspectService, archiveSvc service.ArchiveService) *ProspectHandler {
	return &ProspectHandler{prospectSvc: prospectSvc, archiveSvc: archiveSvc}
}

// List 潜在客户列表
// GET /api/v1/prospects?q=&status=&page=1&page_size=20
func (h *ProspectHandler) List(c *gin.Context) {
	var req dto.ProspectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.prospectSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 潜在客户详情（含跟进记录）
// GET /api/v1/prospects/:id
func (h *ProspectHandler) GetByID(c *gin.Context) {
	prospect, err := h.prospectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, prospect)
}

// Create 创建潜在客户
// POST /api/v1/prospects
func (h *ProspectHandler) Create(c *gin.Context) {
	var req dto.CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	prospect, err := h.prospectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, prospect)
}

// Update 更新潜在客户
// PUT /api/v1/prospects/:id
func (h *ProspectHandler) Update(c *gin.Context) {
	var req dto.UpdateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	prospect, err := h.prospectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, prospect)
}

// Archive 归档潜在客户
// DELETE /api/v1/prospects/:id
func (h *ProspectHandler) Archive(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	history, err := h.archiveSvc.ArchiveProspect(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, history)
}

// AddFollowUp 新增跟进记录
// POST /api/v1/prospects/:id/follow-ups
func (h *ProspectHandler) AddFollowUp(c *gin.Context) {
	var req dto.CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	prospect, err := h.prospectSvc.AddFollowUp(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, prospect)
}

// Convert 潜在客户转为工程
// POST /api/v1/prospects/:id/convert
func (h *ProspectHandler) Convert(c *gin.Context) {
	var req dto.ConvertProspectRequest
	// 请求体可为空
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.prospectSvc.Convert(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, result)
}
