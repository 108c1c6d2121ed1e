package dto

import "github.com/shopspring/decimal"

// ── 项目模块 DTO ──

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name       string           `json:"name"        binding:"required,min=2,max=200"`
	ClientName string           `json:"client_name" binding:"required,min=2,max=200"`
	Address    string           `json:"address"     binding:"omitempty,max=300"`
	Status     string           `json:"status"      binding:"omitempty,oneof=planning active paused finished"`
	StartDate  string           `json:"start_date"  binding:"required,datetime=2006-01-02"`
	EndDate    *string          `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	Budget     *decimal.Decimal `json:"budget"`
	Notes      string           `json:"notes"       binding:"omitempty,max=5000"`
}

// UpdateProjectRequest 更新项目请求；version 非空时用于乐观锁比对
type UpdateProjectRequest struct {
	Name       *string          `json:"name"        binding:"omitempty,min=2,max=200"`
	ClientName *string          `json:"client_name" binding:"omitempty,min=2,max=200"`
	Address    *string          `json:"address"     binding:"omitempty,max=300"`
	Status     *string          `json:"status"      binding:"omitempty,oneof=planning active paused finished"`
	StartDate  *string          `json:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate    *string          `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	Budget     *decimal.Decimal `json:"budget"`
	Notes      *string          `json:"notes"       binding:"omitempty,max=5000"`
	Version    *int             `json:"version"     binding:"omitempty,min=1"`
}

// ProjectListRequest 项目列表查询参数
type ProjectListRequest struct {
	Q      string `form:"q"      binding:"omitempty,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=planning active paused finished"`
	PaginationRequest
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	ClientName string          `json:"client_name"`
	Address    string          `json:"address,omitempty"`
	Status     string          `json:"status"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
	Budget     decimal.Decimal `json:"budget"`
	Notes      string          `json:"notes,omitempty"`
	Version    int             `json:"version"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// ProjectDetailResponse 项目详情（含关联）
type ProjectDetailResponse struct {
	ProjectResponse
	Contractors []ContractorBrief        `json:"contractors"`
	Workers     []WorkerBrief            `json:"workers"`
	Payments    []ProjectPaymentResponse `json:"payments"`
	Concepts    []ConceptResponse        `json:"concepts"`
}

// ── 客户回款 ──

// CreateProjectPaymentRequest 登记客户回款请求
type CreateProjectPaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount"    binding:"required"`
	PaidAt    string           `json:"paid_at"   binding:"required,datetime=2006-01-02"`
	Method    string           `json:"method"    binding:"omitempty,oneof=cash transfer check"`
	Reference string           `json:"reference" binding:"omitempty,max=100"`
	Notes     string           `json:"notes"     binding:"omitempty,max=2000"`
}

// ProjectPaymentResponse 客户回款响应
type ProjectPaymentResponse struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    string          `json:"paid_at"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// ProjectSummaryResponse 项目财务汇总
type ProjectSummaryResponse struct {
	ProjectID       string          `json:"project_id"`
	Budget          decimal.Decimal `json:"budget"`
	ClientPaid      decimal.Decimal `json:"client_paid"`
	Receivable      decimal.Decimal `json:"receivable"` // 预算 - 已回款
	ConceptBudgeted decimal.Decimal `json:"concept_budgeted"`
	ConceptSpent    decimal.Decimal `json:"concept_spent"`
	Expenses        decimal.Decimal `json:"expenses"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Balance         decimal.Decimal `json:"balance"` // 已回款 - 总支出
}
