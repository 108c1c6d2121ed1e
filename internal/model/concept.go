package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Concept 项目预算科目表，对应 concepts
type Concept struct {
	ConceptID      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"concept_id"`
	ProjectID      string          `gorm:"type:uuid;not null"                             json:"project_id"`
	Name           string          `gorm:"type:varchar(200);not null"                     json:"name"`
	Description    string          `gorm:"type:text"                                      json:"description,omitempty"`
	BudgetedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"budgeted_amount"`
	BaseModel

	// 关联
	Payments []ConceptPayment `gorm:"foreignKey:ConceptID" json:"payments,omitempty"`
}

// TableName 指定表名
func (Concept) TableName() string { return "concepts" }

// PaidTotal 已支付合计（需预加载 Payments）
func (c *Concept) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ConceptPayment 科目付款表，对应 concept_payments
type ConceptPayment struct {
	ConceptPaymentID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"concept_payment_id"`
	ConceptID        string          `gorm:"type:uuid;not null"                             json:"concept_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	PaidAt           time.Time       `gorm:"type:date;not null"                             json:"paid_at"`
	Notes            string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ConceptPayment) TableName() string { return "concept_payments" }
