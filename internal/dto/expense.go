package dto

import "github.com/shopspring/decimal"

// ── 一般支出模块 DTO ──

// CreateExpenseRequest 登记支出请求
type CreateExpenseRequest struct {
	ProjectID   *string          `json:"project_id"  binding:"omitempty,uuid"`
	Category    string           `json:"category"    binding:"required,min=2,max=60"`
	Description string           `json:"description" binding:"omitempty,max=300"`
	Amount      *decimal.Decimal `json:"amount"      binding:"required"`
	SpentAt     string           `json:"spent_at"    binding:"required,datetime=2006-01-02"`
}

// UpdateExpenseRequest 更新支出请求（空字符串 project_id 表示解除项目关联）
type UpdateExpenseRequest struct {
	ProjectID   *string          `json:"project_id"`
	Category    *string          `json:"category"    binding:"omitempty,min=2,max=60"`
	Description *string          `json:"description" binding:"omitempty,max=300"`
	Amount      *decimal.Decimal `json:"amount"`
	SpentAt     *string          `json:"spent_at"    binding:"omitempty,datetime=2006-01-02"`
}

// ExpenseListRequest 支出列表查询参数
type ExpenseListRequest struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Category  string `form:"category"   binding:"omitempty,max=60"`
	Source    string `form:"source"     binding:"omitempty,oneof=manual payroll"`
	From      string `form:"from"       binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to"         binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// ExpenseResponse 支出响应
type ExpenseResponse struct {
	ID               string          `json:"id"`
	ProjectID        *string         `json:"project_id,omitempty"`
	ProjectName      string          `json:"project_name,omitempty"`
	Category         string          `json:"category"`
	Description      string          `json:"description,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	SpentAt          string          `json:"spent_at"`
	Source           string          `json:"source"`
	PayrollPaymentID *string         `json:"payroll_payment_id,omitempty"`
	CreatedAt        string          `json:"created_at"`
}
