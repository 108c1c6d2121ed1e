package dto

import "github.com/shopspring/decimal"

// ── 潜在客户模块 DTO ──

// CreateProspectRequest 创建潜在客户请求
type CreateProspectRequest struct {
	Name            string           `json:"name"             binding:"required,min=2,max=200"`
	ClientName      string           `json:"client_name"      binding:"required,min=2,max=200"`
	ContactPhone    string           `json:"contact_phone"    binding:"omitempty,max=30"`
	ContactEmail    string           `json:"contact_email"    binding:"omitempty,email,max=150"`
	Address         string           `json:"address"          binding:"omitempty,max=300"`
	EstimatedAmount *decimal.Decimal `json:"estimated_amount"`
	Status          string           `json:"status"           binding:"omitempty,oneof=new contacted quoted won lost"`
	Notes           string           `json:"notes"            binding:"omitempty,max=5000"`
}

// UpdateProspectRequest 更新潜在客户请求
type UpdateProspectRequest struct {
	Name            *string          `json:"name"             binding:"omitempty,min=2,max=200"`
	ClientName      *string          `json:"client_name"      binding:"omitempty,min=2,max=200"`
	ContactPhone    *string          `json:"contact_phone"    binding:"omitempty,max=30"`
	ContactEmail    *string          `json:"contact_email"    binding:"omitempty,email,max=150"`
	Address         *string          `json:"address"          binding:"omitempty,max=300"`
	EstimatedAmount *decimal.Decimal `json:"estimated_amount"`
	Status          *string          `json:"status"           binding:"omitempty,oneof=new contacted quoted won lost"`
	Notes           *string          `json:"notes"            binding:"omitempty,max=5000"`
}

// ProspectListRequest 潜在客户列表查询参数
type ProspectListRequest struct {
	Q      string `form:"q"      binding:"omitempty,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=new contacted quoted won lost"`
	PaginationRequest
}

// CreateFollowUpRequest 新增跟进记录请求；happened_at 缺省为当天
type CreateFollowUpRequest struct {
	Note       string `json:"note"        binding:"required,min=1,max=5000"`
	HappenedAt string `json:"happened_at" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertProspectRequest 潜在客户转化为项目请求
type ConvertProspectRequest struct {
	StartDate *string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Budget    *decimal.Decimal `json:"budget"`
	Status    *string          `json:"status"     binding:"omitempty,oneof=planning active"`
}

// ProspectResponse 潜在客户响应
type ProspectResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	ClientName      string             `json:"client_name"`
	ContactPhone    string             `json:"contact_phone,omitempty"`
	ContactEmail    string             `json:"contact_email,omitempty"`
	Address         string             `json:"address,omitempty"`
	EstimatedAmount decimal.Decimal    `json:"estimated_amount"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	FollowUps       []FollowUpResponse `json:"follow_ups,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

// FollowUpResponse 跟进记录响应
type FollowUpResponse struct {
	ID         string `json:"id"`
	ProspectID string `json:"prospect_id"`
	Note       string `json:"note"`
	HappenedAt string `json:"happened_at"`
}

// ConvertProspectResponse 转化结果
type ConvertProspectResponse struct {
	Project   ProjectResponse `json:"project"`
	HistoryID string          `json:"history_id"`
}
