package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// CatalogHandler 专业、承包商、工人目录 HTTP 处理器
type CatalogHandler struct {
	specialtySvc  service.SpecialtyService
	contractorSvc service.ContractorService
	workerSvc     service.WorkerService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(
	specialtySvc service.SpecialtyService,
	contractorSvc service.ContractorService,
	workerSvc service.WorkerService,
) *CatalogHandler {
	return &CatalogHandler{
		specialtySvc:  specialtySvc,
		contractorSvc: contractorSvc,
		workerSvc:     workerSvc,
	}
}

// ═══════════════════════════════════════════════════════════
// 专业
// ═══════════════════════════════════════════════════════════

// ListSpecialties 专业列表
// GET /api/v1/specialties?q=
func (h *CatalogHandler) ListSpecialties(c *gin.Context) {
	list, err := h.specialtySvc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetSpecialty 专业详情
// GET /api/v1/specialties/:id
func (h *CatalogHandler) GetSpecialty(c *gin.Context) {
	item, err := h.specialtySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// CreateSpecialty 创建专业
// POST /api/v1/specialties
func (h *CatalogHandler) CreateSpecialty(c *gin.Context) {
	var req dto.CreateSpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.specialtySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateSpecialty 更新专业
// PUT /api/v1/specialties/:id
func (h *CatalogHandler) UpdateSpecialty(c *gin.Context) {
	var req dto.UpdateSpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.specialtySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// DeleteSpecialty 删除专业（软删除）
// DELETE /api/v1/specialties/:id
func (h *CatalogHandler) DeleteSpecialty(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.specialtySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// ═══════════════════════════════════════════════════════════
// 承包商
// ═══════════════════════════════════════════════════════════

// ListContractors 承包商列表
// GET /api/v1/contractors?q=&active=true&page=1&page_size=20
func (h *CatalogHandler) ListContractors(c *gin.Context) {
	var req dto.CatalogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.contractorSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetContractor 承包商详情
// GET /api/v1/contractors/:id
func (h *CatalogHandler) GetContractor(c *gin.Context) {
	item, err := h.contractorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// CreateContractor 创建承包商
// POST /api/v1/contractors
func (h *CatalogHandler) CreateContractor(c *gin.Context) {
	var req dto.CreateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.contractorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateContractor 更新承包商
// PUT /api/v1/contractors/:id
func (h *CatalogHandler) UpdateContractor(c *gin.Context) {
	var req dto.UpdateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.contractorSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// DeleteContractor 删除承包商
// DELETE /api/v1/contractors/:id
func (h *CatalogHandler) DeleteContractor(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.contractorSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// ═══════════════════════════════════════════════════════════
// 工人
// ═══════════════════════════════════════════════════════════

// ListWorkers 工人列表
// GET /api/v1/workers?q=&active=true&page=1&page_size=20
func (h *CatalogHandler) ListWorkers(c *gin.Context) {
	var req dto.CatalogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.workerSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetWorker 工人详情
// GET /api/v1/workers/:id
func (h *CatalogHandler) GetWorker(c *gin.Context) {
	item, err := h.workerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// CreateWorker 创建工人
// POST /api/v1/workers
func (h *CatalogHandler) CreateWorker(c *gin.Context) {
	var req dto.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.workerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateWorker 更新工人
// PUT /api/v1/workers/:id
func (h *CatalogHandler) UpdateWorker(c *gin.Context) {
	var req dto.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.workerSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, item)
}

// DeleteWorker 删除工人
// DELETE /api/v1/workers/:id
func (h *CatalogHandler) DeleteWorker(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.workerSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
