package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// 潜在客户归档原因
const (
	ArchiveReasonDeleted   = "deleted"
	ArchiveReasonConverted = "converted"
)

// ── 项目快照（历史记录的 JSONB 列） ──

// ContractorRef 归档时的承包商引用
type ContractorRef struct {
	ContractorID string `json:"contractor_id"`
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
}

// WorkerRef 归档时的工人引用
type WorkerRef struct {
	WorkerID  string          `json:"worker_id"`
	Name      string          `json:"name"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// ClientPaymentSnapshot 客户回款快照
type ClientPaymentSnapshot struct {
	ProjectPaymentID string          `json:"project_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaidAt           time.Time       `json:"paid_at"`
	Method           string          `json:"method,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// ConceptPaymentSnapshot 科目付款快照
type ConceptPaymentSnapshot struct {
	ConceptPaymentID string          `json:"concept_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaidAt           time.Time       `json:"paid_at"`
	Notes            string          `json:"notes,omitempty"`
}

// ConceptSnapshot 预算科目快照（含付款）
type ConceptSnapshot struct {
	ConceptID      string                   `json:"concept_id"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description,omitempty"`
	BudgetedAmount decimal.Decimal          `json:"budgeted_amount"`
	Payments       []ConceptPaymentSnapshot `json:"payments"`
}

// ExpenseSnapshot 一般支出快照
type ExpenseSnapshot struct {
	ExpenseID   string          `json:"expense_id"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	SpentAt     time.Time       `json:"spent_at"`
	Source      string          `json:"source"`
}

// ProjectSnapshot 项目删除前的完整快照
type ProjectSnapshot struct {
	ProjectID      string                  `json:"project_id"`
	Name           string                  `json:"name"`
	ClientName     string                  `json:"client_name"`
	Address        string                  `json:"address,omitempty"`
	Status         string                  `json:"status"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        *time.Time              `json:"end_date,omitempty"`
	Budget         decimal.Decimal         `json:"budget"`
	Notes          string                  `json:"notes,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
	Contractors    []ContractorRef         `json:"contractors"`
	Workers        []WorkerRef             `json:"workers"`
	ClientPayments []ClientPaymentSnapshot `json:"client_payments"`
	Concepts       []ConceptSnapshot       `json:"concepts"`
	Expenses       []ExpenseSnapshot       `json:"expenses"`
}

// NewProjectSnapshot 由已预加载关联的项目构建快照
func NewProjectSnapshot(p *Project) ProjectSnapshot {
	snap := ProjectSnapshot{
		ProjectID:      p.ProjectID,
		Name:           p.Name,
		ClientName:     p.ClientName,
		Address:        p.Address,
		Status:         p.Status,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Budget:         p.Budget,
		Notes:          p.Notes,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		Contractors:    make([]ContractorRef, 0, len(p.Contractors)),
		Workers:        make([]WorkerRef, 0, len(p.Workers)),
		ClientPayments: make([]ClientPaymentSnapshot, 0, len(p.Payments)),
		Concepts:       make([]ConceptSnapshot, 0, len(p.Concepts)),
		Expenses:       make([]ExpenseSnapshot, 0, len(p.Expenses)),
	}
	for _, c := range p.Contractors {
		snap.Contractors = append(snap.Contractors, ContractorRef{ContractorID: c.ContractorID, Name: c.Name, Company: c.Company})
	}
	for _, w := range p.Workers {
		snap.Workers = append(snap.Workers, WorkerRef{WorkerID: w.WorkerID, Name: w.Name, DailyRate: w.DailyRate})
	}
	for _, pay := range p.Payments {
		snap.ClientPayments = append(snap.ClientPayments, ClientPaymentSnapshot{
			ProjectPaymentID: pay.ProjectPaymentID,
			Amount:           pay.Amount,
			PaidAt:           pay.PaidAt,
			Method:           pay.Method,
			Reference:        pay.Reference,
			Notes:            pay.Notes,
		})
	}
	for _, c := range p.Concepts {
		cs := ConceptSnapshot{
			ConceptID:      c.ConceptID,
			Name:           c.Name,
			Description:    c.Description,
			BudgetedAmount: c.BudgetedAmount,
			Payments:       make([]ConceptPaymentSnapshot, 0, len(c.Payments)),
		}
		for _, cp := range c.Payments {
			cs.Payments = append(cs.Payments, ConceptPaymentSnapshot{
				ConceptPaymentID: cp.ConceptPaymentID,
				Amount:           cp.Amount,
				PaidAt:           cp.PaidAt,
				Notes:            cp.Notes,
			})
		}
		snap.Concepts = append(snap.Concepts, cs)
	}
	for _, e := range p.Expenses {
		snap.Expenses = append(snap.Expenses, ExpenseSnapshot{
			ExpenseID:   e.ExpenseID,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
			SpentAt:     e.SpentAt,
			Source:      e.Source,
		})
	}
	return snap
}

// Validate 校验快照完整性
func (s *ProjectSnapshot) Validate() error {
	if s.ProjectID == "" || s.Name == "" {
		return errors.New("项目快照缺少 project_id 或 name")
	}
	if s.Budget.IsNegative() {
		return errors.New("项目快照预算不能为负")
	}
	for _, c := range s.Contractors {
		if c.ContractorID == "" {
			return errors.New("项目快照承包商缺少 contractor_id")
		}
	}
	for _, w := range s.Workers {
		if w.WorkerID == "" {
			return errors.New("项目快照工人缺少 worker_id")
		}
	}
	for _, p := range s.ClientPayments {
		if p.ProjectPaymentID == "" || !p.Amount.IsPositive() {
			return fmt.Errorf("项目快照回款 %q 无效", p.ProjectPaymentID)
		}
	}
	for _, c := range s.Concepts {
		if c.ConceptID == "" {
			return errors.New("项目快照科目缺少 concept_id")
		}
		for _, cp := range c.Payments {
			if cp.ConceptPaymentID == "" || !cp.Amount.IsPositive() {
				return fmt.Errorf("项目快照科目付款 %q 无效", cp.ConceptPaymentID)
			}
		}
	}
	for _, e := range s.Expenses {
		if e.ExpenseID == "" || !e.Amount.IsPositive() {
			return fmt.Errorf("项目快照支出 %q 无效", e.ExpenseID)
		}
	}
	return nil
}

// Scan 实现 sql.Scanner（JSONB → 结构体）
func (s *ProjectSnapshot) Scan(src interface{}) error { return scanJSON(src, s) }

// Value 实现 driver.Valuer（结构体 → JSONB）
func (s ProjectSnapshot) Value() (driver.Value, error) { return valueJSON(s) }

// ── 潜在客户快照 ──

// FollowUpSnapshot 跟进记录快照
type FollowUpSnapshot struct {
	FollowUpID string    `json:"follow_up_id"`
	Note       string    `json:"note"`
	HappenedAt time.Time `json:"happened_at"`
}

// ProspectSnapshot 潜在客户删除/转化前的快照
type ProspectSnapshot struct {
	ProspectID      string             `json:"prospect_id"`
	Name            string             `json:"name"`
	ClientName      string             `json:"client_name"`
	ContactPhone    string             `json:"contact_phone,omitempty"`
	ContactEmail    string             `json:"contact_email,omitempty"`
	Address         string             `json:"address,omitempty"`
	EstimatedAmount decimal.Decimal    `json:"estimated_amount"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	FollowUps       []FollowUpSnapshot `json:"follow_ups"`
}

// NewProspectSnapshot 由已预加载跟进记录的潜在客户构建快照
func NewProspectSnapshot(p *Prospect) ProspectSnapshot {
	snap := ProspectSnapshot{
		ProspectID:      p.ProspectID,
		Name:            p.Name,
		ClientName:      p.ClientName,
		ContactPhone:    p.ContactPhone,
		ContactEmail:    p.ContactEmail,
		Address:         p.Address,
		EstimatedAmount: p.EstimatedAmount,
		Status:          p.Status,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		FollowUps:       make([]FollowUpSnapshot, 0, len(p.FollowUps)),
	}
	for _, f := range p.FollowUps {
		snap.FollowUps = append(snap.FollowUps, FollowUpSnapshot{
			FollowUpID: f.FollowUpID,
			Note:       f.Note,
			HappenedAt: f.HappenedAt,
		})
	}
	return snap
}

// Validate 校验快照完整性
func (s *ProspectSnapshot) Validate() error {
	if s.ProspectID == "" || s.Name == "" {
		return errors.New("潜在客户快照缺少 prospect_id 或 name")
	}
	if s.EstimatedAmount.IsNegative() {
		return errors.New("潜在客户快照预估金额不能为负")
	}
	for _, f := range s.FollowUps {
		if f.FollowUpID == "" {
			return errors.New("潜在客户快照跟进记录缺少 follow_up_id")
		}
	}
	return nil
}

// Scan 实现 sql.Scanner
func (s *ProspectSnapshot) Scan(src interface{}) error { return scanJSON(src, s) }

// Value 实现 driver.Valuer
func (s ProspectSnapshot) Value() (driver.Value, error) { return valueJSON(s) }

// ── 历史记录表 ──

// ProjectHistory 项目历史归档表，对应 project_histories
type ProjectHistory struct {
	HistoryID         string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	OriginalProjectID string          `gorm:"type:uuid;not null"                             json:"original_project_id"`
	Name              string          `gorm:"type:varchar(200);not null"                     json:"name"`
	ArchivedAt        time.Time       `gorm:"not null"                                       json:"archived_at"`
	ArchivedBy        *string         `gorm:"type:varchar(64)"                               json:"archived_by,omitempty"`
	Snapshot          ProjectSnapshot `gorm:"type:jsonb;not null"                            json:"snapshot"`
}

// TableName 指定表名
func (ProjectHistory) TableName() string { return "project_histories" }

// ProspectHistory 潜在客户历史归档表，对应 prospect_histories
type ProspectHistory struct {
	HistoryID          string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	OriginalProspectID string           `gorm:"type:uuid;not null"                             json:"original_prospect_id"`
	Name               string           `gorm:"type:varchar(200);not null"                     json:"name"`
	Reason             string           `gorm:"type:varchar(20);not null"                      json:"reason"` // deleted | converted
	ConvertedProjectID *string          `gorm:"type:uuid"                                      json:"converted_project_id,omitempty"`
	ArchivedAt         time.Time        `gorm:"not null"                                       json:"archived_at"`
	ArchivedBy         *string          `gorm:"type:varchar(64)"                               json:"archived_by,omitempty"`
	Snapshot           ProspectSnapshot `gorm:"type:jsonb;not null"                            json:"snapshot"`
}

// TableName 指定表名
func (ProspectHistory) TableName() string { return "prospect_histories" }

// ── JSONB 编解码 ──

func scanJSON(src interface{}, dst interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("snapshot.Scan: unsupported type %T", src)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("snapshot.Scan: %w", err)
	}
	return nil
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot.Value: %w", err)
	}
	return string(b), nil
}
