package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 支出来源
const (
	ExpenseSourceManual  = "manual"
	ExpenseSourcePayroll = "payroll" // 由已付工资自动记账，只读
)

// Expense 一般支出表，对应 expenses
type Expense struct {
	ExpenseID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"expense_id"`
	ProjectID        *string         `gorm:"type:uuid"                                      json:"project_id,omitempty"`
	Category         string          `gorm:"type:varchar(60);not null"                      json:"category"`
	Description      string          `gorm:"type:varchar(300)"                              json:"description,omitempty"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	SpentAt          time.Time       `gorm:"type:date;not null"                             json:"spent_at"`
	Source           string          `gorm:"type:varchar(10);not null;default:'manual'"     json:"source"`
	PayrollPaymentID *string         `gorm:"type:uuid;uniqueIndex"                          json:"payroll_payment_id,omitempty"`
	BaseModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName 指定表名
func (Expense) TableName() string { return "expenses" }

// IsReadOnly 工资自动记账的支出不可通过支出接口修改
func (e *Expense) IsReadOnly() bool { return e.Source == ExpenseSourcePayroll }
