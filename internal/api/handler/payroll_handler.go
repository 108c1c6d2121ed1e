package handler

import (
	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// PayrollHandler 工资周与工资发放 HTTP 处理器
type PayrollHandler struct {
	payrollSvc service.PayrollService
}

// NewPayrollHandler 创建 PayrollHandler
func NewPayrollHandler(payrollSvc service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollSvc: payrollSvc}
}

// ── 工资周 ──

// PreviewWeeks 预览某年的工资周区间（不落库）
// GET /api/v1/payroll-weeks/preview?year=2025
func (h *PayrollHandler) PreviewWeeks(c *gin.Context) {
	year, ok := bindYear(c)
	if !ok {
		return
	}
	weeks, err := h.payrollSvc.PreviewWeeks(year)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"year": year, "weeks": weeks})
}

// GenerateWeeks 生成某年的工资周
// POST /api/v1/payroll-weeks/generate
func (h *PayrollHandler) GenerateWeeks(c *gin.Context) {
	var req dto.GenerateWeeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.payrollSvc.GenerateWeeks(c.Request.Context(), req.Year, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, result)
}

// ListWeeks 按年列出工资周
// GET /api/v1/payroll-weeks?year=2025
func (h *PayrollHandler) ListWeeks(c *gin.Context) {
	year, ok := bindYear(c)
	if !ok {
		return
	}
	weeks, err := h.payrollSvc.ListWeeks(c.Request.Context(), year)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": weeks})
}

// ListYears 列出已有工资周的年份及汇总
// GET /api/v1/payroll-weeks/years
func (h *PayrollHandler) ListYears(c *gin.Context) {
	years, err := h.payrollSvc.ListYears(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": years})
}

// CurrentWeek 当前工资周
// GET /api/v1/payroll-weeks/current
func (h *PayrollHandler) CurrentWeek(c *gin.Context) {
	week, err := h.payrollSvc.CurrentWeek(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, week)
}

// GetWeek 工资周详情（含发放明细）
// GET /api/v1/payroll-weeks/:id
func (h *PayrollHandler) GetWeek(c *gin.Context) {
	week, err := h.payrollSvc.GetWeek(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, week)
}

// UpdateWeek 更新工资周备注
// PUT /api/v1/payroll-weeks/:id
func (h *PayrollHandler) UpdateWeek(c *gin.Context) {
	var req dto.UpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week, err := h.payrollSvc.UpdateWeek(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, week)
}

// CloseWeek 关闭工资周
// PUT /api/v1/payroll-weeks/:id/close
func (h *PayrollHandler) CloseWeek(c *gin.Context) {
	h.setClosed(c, true)
}

// ReopenWeek 重新打开工资周
// PUT /api/v1/payroll-weeks/:id/reopen
func (h *PayrollHandler) ReopenWeek(c *gin.Context) {
	h.setClosed(c, false)
}

func (h *PayrollHandler) setClosed(c *gin.Context, closed bool) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, err := h.payrollSvc.SetWeekClosed(c.Request.Context(), c.Param("id"), closed, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, week)
}

// Recalculate 重新计算工资周合计
// POST /api/v1/payroll-weeks/:id/recalculate
func (h *PayrollHandler) Recalculate(c *gin.Context) {
	week, err := h.payrollSvc.RecalculateTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, week)
}

// PurgeYear 删除某年全部工资周
// DELETE /api/v1/payroll-weeks?year=2025
func (h *PayrollHandler) PurgeYear(c *gin.Context) {
	year, ok := bindYear(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.payrollSvc.PurgeYear(c.Request.Context(), year, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

// ── 工资发放 ──

// ListPayments 工资周发放列表
// GET /api/v1/payroll-weeks/:id/payments
func (h *PayrollHandler) ListPayments(c *gin.Context) {
	payments, err := h.payrollSvc.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": payments})
}

// CreatePayment 新增工资发放
// POST /api/v1/payroll-weeks/:id/payments
func (h *PayrollHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.payrollSvc.CreatePayment(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdatePayment 更新工资发放
// PUT /api/v1/payroll-weeks/:id/payments/:pid
func (h *PayrollHandler) UpdatePayment(c *gin.Context) {
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.payrollSvc.UpdatePayment(c.Request.Context(), c.Param("id"), c.Param("pid"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

// DeletePayment 删除工资发放
// DELETE /api/v1/payroll-weeks/:id/payments/:pid
func (h *PayrollHandler) DeletePayment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.payrollSvc.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("pid"), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}
