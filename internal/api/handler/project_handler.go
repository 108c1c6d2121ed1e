package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// ProjectHandler 工程、预算项及客户收款 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ProjectService
	conceptSvc service.ConceptService
	archiveSvc service.ArchiveService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(
	projectSvc service.ProjectService,
	conceptSvc service.ConceptService,
	archiveSvc service.ArchiveService,
) *ProjectHandler {
	return &ProjectHandler{
		projectSvc: projectSvc,
		conceptSvc: conceptSvc,
		archiveSvc: archiveSvc,
	}
}

// ── 工程 ──

// List 工程列表
// GET /api/v1/projects?q=&status=active&page=1&page_size=20
func (h *ProjectHandler) List(c *gin.Context) {
	var req dto.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.projectSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 工程详情（含关联承包商、工人、收款）
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	project, err := h.projectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, project)
}

// Create 创建工程
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, project)
}

// Update 更新工程（乐观锁）
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, project)
}

// Archive 归档工程：写入历史快照后删除
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Archive(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	history, err := h.archiveSvc.ArchiveProject(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, history)
}

// SetContractors 替换工程承包商
// PUT /api/v1/projects/:id/contractors
func (h *ProjectHandler) SetContractors(c *gin.Context) {
	var req dto.IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	project, err := h.projectSvc.SetContractors(c.Request.Context(), c.Param("id"), req.IDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, project)
}

// SetWorkers 替换工程工人
// PUT /api/v1/projects/:id/workers
func (h *ProjectHandler) SetWorkers(c *gin.Context) {
	var req dto.IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	project, err := h.projectSvc.SetWorkers(c.Request.Context(), c.Param("id"), req.IDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, project)
}

// AddPayment 登记客户收款
// POST /api/v1/projects/:id/payments
func (h *ProjectHandler) AddPayment(c *gin.Context) {
	var req dto.CreateProjectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	payment, err := h.projectSvc.AddPayment(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, payment)
}

// DeletePayment 删除客户收款
// DELETE /api/v1/projects/:id/payments/:pid
func (h *ProjectHandler) DeletePayment(c *gin.Context) {
	if err := h.projectSvc.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("pid")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// Summary 工程收支汇总
// GET /api/v1/projects/:id/summary
func (h *ProjectHandler) Summary(c *gin.Context) {
	summary, err := h.projectSvc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, summary)
}

// ── 预算项 ──

// ListConcepts 工程预算项列表
// GET /api/v1/projects/:id/concepts
func (h *ProjectHandler) ListConcepts(c *gin.Context) {
	list, err := h.conceptSvc.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CreateConcept 新增预算项
// POST /api/v1/projects/:id/concepts
func (h *ProjectHandler) CreateConcept(c *gin.Context) {
	var req dto.CreateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	concept, err := h.conceptSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, concept)
}

// UpdateConcept 更新预算项
// PUT /api/v1/concepts/:id
func (h *ProjectHandler) UpdateConcept(c *gin.Context) {
	var req dto.UpdateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	concept, err := h.conceptSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, concept)
}

// DeleteConcept 删除预算项（连同其付款）
// DELETE /api/v1/concepts/:id
func (h *ProjectHandler) DeleteConcept(c *gin.Context) {
	if err := h.conceptSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddConceptPayment 登记预算项付款
// POST /api/v1/concepts/:id/payments
func (h *ProjectHandler) AddConceptPayment(c *gin.Context) {
	var req dto.CreateConceptPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	concept, err := h.conceptSvc.AddPayment(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, concept)
}

// DeleteConceptPayment 删除预算项付款
// DELETE /api/v1/concepts/:id/payments/:pid
func (h *ProjectHandler) DeleteConceptPayment(c *gin.Context) {
	if err := h.conceptSvc.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("pid")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
