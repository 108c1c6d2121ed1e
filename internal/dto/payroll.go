package dto

import "github.com/shopspring/decimal"

// ── 工资模块 DTO ──

// GenerateWeeksRequest 生成年度工资周请求
type GenerateWeeksRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2100"`
}

// YearQuery 按年份查询参数
type YearQuery struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

// UpdateWeekRequest 更新工资周请求（仅备注可改）
type UpdateWeekRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// CreatePaymentRequest 新增工资发放请求
// worker_id 与 recipient 至少提供一个；仅提供 worker_id 时收款人默认为工人姓名
type CreatePaymentRequest struct {
	WorkerID  *string          `json:"worker_id" binding:"omitempty,uuid"`
	Recipient string           `json:"recipient" binding:"omitempty,max=200"`
	Amount    *decimal.Decimal `json:"amount"    binding:"required"`
	PayDate   string           `json:"pay_date"  binding:"required,datetime=2006-01-02"`
	Status    string           `json:"status"    binding:"required,oneof=pending paid"`
	Concept   string           `json:"concept"   binding:"omitempty,max=200"`
	Notes     string           `json:"notes"     binding:"omitempty,max=2000"`
}

// UpdatePaymentRequest 更新工资发放请求（空字符串 worker_id 表示解除工人关联）
type UpdatePaymentRequest struct {
	WorkerID  *string          `json:"worker_id"`
	Recipient *string          `json:"recipient" binding:"omitempty,max=200"`
	Amount    *decimal.Decimal `json:"amount"`
	PayDate   *string          `json:"pay_date"  binding:"omitempty,datetime=2006-01-02"`
	Status    *string          `json:"status"    binding:"omitempty,oneof=pending paid"`
	Concept   *string          `json:"concept"   binding:"omitempty,max=200"`
	Notes     *string          `json:"notes"     binding:"omitempty,max=2000"`
}

// ── 响应 ──

// PayrollWeekResponse 工资周响应
type PayrollWeekResponse struct {
	ID           string                   `json:"id"`
	Year         int                      `json:"year"`
	WeekNumber   int                      `json:"week_number"`
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	TotalPaid    decimal.Decimal          `json:"total_paid"`
	TotalPending decimal.Decimal          `json:"total_pending"`
	Closed       bool                     `json:"closed"`
	Notes        string                   `json:"notes,omitempty"`
	Payments     []PayrollPaymentResponse `json:"payments,omitempty"`
}

// WeekRangeResponse 周区间预览（不落库）
type WeekRangeResponse struct {
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// GenerateWeeksResponse 生成结果
type GenerateWeeksResponse struct {
	Year  int                   `json:"year"`
	Count int                   `json:"count"`
	Weeks []PayrollWeekResponse `json:"weeks"`
}

// PurgeYearResponse 年度清除结果
type PurgeYearResponse struct {
	Year            int   `json:"year"`
	DeletedWeeks    int64 `json:"deleted_weeks"`
	DeletedExpenses int64 `json:"deleted_expenses"`
}

// PayrollYearResponse 年度汇总
type PayrollYearResponse struct {
	Year         int             `json:"year"`
	Weeks        int             `json:"weeks"`
	ClosedWeeks  int             `json:"closed_weeks"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}

// PayrollPaymentResponse 工资发放响应
type PayrollPaymentResponse struct {
	ID        string          `json:"id"`
	WeekID    string          `json:"week_id"`
	WorkerID  *string         `json:"worker_id,omitempty"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	PayDate   string          `json:"pay_date"`
	Status    string          `json:"status"`
	Concept   string          `json:"concept,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// PaymentMutationResponse 发放变更结果（含对账后的周合计）
type PaymentMutationResponse struct {
	Payment *PayrollPaymentResponse `json:"payment,omitempty"`
	Week    PayrollWeekResponse     `json:"week"`
}
