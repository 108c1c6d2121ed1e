package dto

import "github.com/shopspring/decimal"

// ── 预算科目模块 DTO ──

// CreateConceptRequest 创建科目请求
type CreateConceptRequest struct {
	Name           string           `json:"name"            binding:"required,min=2,max=200"`
	Description    string           `json:"description"     binding:"omitempty,max=2000"`
	BudgetedAmount *decimal.Decimal `json:"budgeted_amount"`
}

// UpdateConceptRequest 更新科目请求
type UpdateConceptRequest struct {
	Name           *string          `json:"name"            binding:"omitempty,min=2,max=200"`
	Description    *string          `json:"description"     binding:"omitempty,max=2000"`
	BudgetedAmount *decimal.Decimal `json:"budgeted_amount"`
}

// CreateConceptPaymentRequest 登记科目付款请求
type CreateConceptPaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"  binding:"required"`
	PaidAt string           `json:"paid_at" binding:"required,datetime=2006-01-02"`
	Notes  string           `json:"notes"   binding:"omitempty,max=2000"`
}

// ConceptResponse 科目响应
type ConceptResponse struct {
	ID             string                   `json:"id"`
	ProjectID      string                   `json:"project_id"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description,omitempty"`
	BudgetedAmount decimal.Decimal          `json:"budgeted_amount"`
	PaidTotal      decimal.Decimal          `json:"paid_total"`
	Remaining      decimal.Decimal          `json:"remaining"`
	Payments       []ConceptPaymentResponse `json:"payments"`
}

// ConceptPaymentResponse 科目付款响应
type ConceptPaymentResponse struct {
	ID        string          `json:"id"`
	ConceptID string          `json:"concept_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    string          `json:"paid_at"`
	Notes     string          `json:"notes,omitempty"`
}
