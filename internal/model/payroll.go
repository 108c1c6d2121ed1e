package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 工资发放状态
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// PayrollWeek 工资周表，对应 payroll_weeks
// 起止日期由周生成器推导（周一至周日），接口层不可修改；合计只通过对账更新。
type PayrollWeek struct {
	WeekID       string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"week_id"`
	Year         int             `gorm:"type:smallint;not null"                         json:"year"`
	WeekNumber   int             `gorm:"type:smallint;not null"                         json:"week_number"`
	StartDate    time.Time       `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time       `gorm:"type:date;not null"                             json:"end_date"`
	TotalPaid    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"total_paid"`
	TotalPending decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"total_pending"`
	Closed       bool            `gorm:"not null;default:false"                         json:"closed"`
	Notes        string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel

	// 关联
	Payments []PayrollPayment `gorm:"foreignKey:WeekID" json:"payments,omitempty"`
}

// TableName 指定表名
func (PayrollWeek) TableName() string { return "payroll_weeks" }

// Contains 判断日期是否落在本周 [start, end] 内
func (w *PayrollWeek) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(w.StartDate)) && !d.After(DateOnly(w.EndDate))
}

// PayrollPayment 工资发放表，对应 payroll_payments
type PayrollPayment struct {
	PaymentID     string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	WeekID        string          `gorm:"type:uuid;not null"                             json:"week_id"`
	WorkerID      *string         `gorm:"type:uuid"                                      json:"worker_id,omitempty"`
	RecipientName string          `gorm:"type:varchar(200);not null"                     json:"recipient_name"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	PayDate       time.Time       `gorm:"type:date;not null"                             json:"pay_date"`
	Status        string          `gorm:"type:varchar(10);not null;default:'pending'"    json:"status"` // pending | paid
	Concept       string          `gorm:"type:varchar(200)"                              json:"concept,omitempty"`
	Notes         string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel

	// 关联
	Worker *Worker `gorm:"foreignKey:WorkerID;references:WorkerID" json:"worker,omitempty"`
}

// TableName 指定表名
func (PayrollPayment) TableName() string { return "payroll_payments" }

// IsPaid 是否已付
func (p *PayrollPayment) IsPaid() bool { return p.Status == PaymentStatusPaid }

// StatusTotals 按状态汇总的金额（对账查询结果）
type StatusTotals struct {
	Paid    decimal.Decimal
	Pending decimal.Decimal
}

// YearSummary 某年工资周汇总
type YearSummary struct {
	Year         int             `json:"year"`
	Weeks        int             `json:"weeks"`
	ClosedWeeks  int             `json:"closed_weeks"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}
