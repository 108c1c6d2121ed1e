package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// ExpenseHandler 一般支出 HTTP 处理器
type ExpenseHandler struct {
	expenseSvc service.ExpenseService
}

// NewExpenseHandler 创建 ExpenseHandler
func NewExpenseHandler(expenseSvc service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseSvc: expenseSvc}
}

// List 支出列表
// GET /api/v1/expenses?project_id=&category=&source=&from=&to=&page=1&page_size=20
func (h *ExpenseHandler) List(c *gin.Context) {
	var req dto.ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	list, total, err := h.expenseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 支出详情
// GET /api/v1/expenses/:id
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	expense, err := h.expenseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, expense)
}

// Create 登记支出
// POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	expense, err := h.expenseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, expense)
}

// Update 更新支出
// PUT /api/v1/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	expense, err := h.expenseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, expense)
}

// Delete 删除支出
// DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
