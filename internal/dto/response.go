package dto

import (
	"time"

	"obra-admin/backend/internal/model"
)

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 通用请求 ──

// IDsRequest 批量 ID 请求（替换关联等）
type IDsRequest struct {
	IDs []string `json:"ids" binding:"omitempty,max=500,dive,uuid"`
}

// ── 日期格式 ──

// FormatDate 格式化日期（YYYY-MM-DD）
func FormatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

// FormatDatePtr 格式化可空日期
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// FormatDateTime 格式化时间戳（RFC3339，UTC）
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseDate 解析 YYYY-MM-DD 日期（UTC 零点）
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, time.UTC)
}
