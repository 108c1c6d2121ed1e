package dto

import "github.com/shopspring/decimal"

// ── 工种模块 DTO ──

// CreateSpecialtyRequest 创建工种请求
type CreateSpecialtyRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateSpecialtyRequest 更新工种请求
type UpdateSpecialtyRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// SpecialtyResponse 工种响应
type SpecialtyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SpecialtyBrief 工种简要信息
type SpecialtyBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── 通用列表查询 ──

// CatalogListRequest 承包商/工人列表查询参数
type CatalogListRequest struct {
	Q          string `form:"q"      binding:"omitempty,max=100"`
	ActiveOnly bool   `form:"active"`
	PaginationRequest
}

// ── 承包商模块 DTO ──

// CreateContractorRequest 创建承包商请求
type CreateContractorRequest struct {
	Name        string  `json:"name"         binding:"required,min=2,max=150"`
	Company     string  `json:"company"      binding:"omitempty,max=150"`
	Phone       string  `json:"phone"        binding:"omitempty,max=30"`
	Email       string  `json:"email"        binding:"omitempty,email,max=150"`
	SpecialtyID *string `json:"specialty_id" binding:"omitempty,uuid"`
	Notes       string  `json:"notes"        binding:"omitempty,max=2000"`
}

// UpdateContractorRequest 更新承包商请求（空字符串 specialty_id 表示清除）
type UpdateContractorRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=2,max=150"`
	Company     *string `json:"company"      binding:"omitempty,max=150"`
	Phone       *string `json:"phone"        binding:"omitempty,max=30"`
	Email       *string `json:"email"        binding:"omitempty,email,max=150"`
	SpecialtyID *string `json:"specialty_id"`
	Notes       *string `json:"notes"        binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// ContractorResponse 承包商响应
type ContractorResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Company   string          `json:"company,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email,omitempty"`
	Specialty *SpecialtyBrief `json:"specialty,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ContractorBrief 承包商简要信息
type ContractorBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

// ── 工人模块 DTO ──

// CreateWorkerRequest 创建工人请求
type CreateWorkerRequest struct {
	Name        string           `json:"name"         binding:"required,min=2,max=150"`
	Phone       string           `json:"phone"        binding:"omitempty,max=30"`
	SpecialtyID *string          `json:"specialty_id" binding:"omitempty,uuid"`
	DailyRate   *decimal.Decimal `json:"daily_rate"`
}

// UpdateWorkerRequest 更新工人请求（空字符串 specialty_id 表示清除）
type UpdateWorkerRequest struct {
	Name        *string          `json:"name"         binding:"omitempty,min=2,max=150"`
	Phone       *string          `json:"phone"        binding:"omitempty,max=30"`
	SpecialtyID *string          `json:"specialty_id"`
	DailyRate   *decimal.Decimal `json:"daily_rate"`
	IsActive    *bool            `json:"is_active"`
}

// WorkerResponse 工人响应
type WorkerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Specialty *SpecialtyBrief `json:"specialty,omitempty"`
	DailyRate decimal.Decimal `json:"daily_rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// WorkerBrief 工人简要信息
type WorkerBrief struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}
