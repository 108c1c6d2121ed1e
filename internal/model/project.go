package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 项目状态
const (
	ProjectStatusPlanning = "planning"
	ProjectStatusActive   = "active"
	ProjectStatusPaused   = "paused"
	ProjectStatusFinished = "finished"
)

// Project 工程项目表，对应 projects
type Project struct {
	ProjectID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Name       string          `gorm:"type:varchar(200);not null"                     json:"name"`
	ClientName string          `gorm:"type:varchar(200);not null"                     json:"client_name"`
	Address    string          `gorm:"type:varchar(300)"                              json:"address,omitempty"`
	Status     string          `gorm:"type:varchar(20);not null;default:'planning'"   json:"status"` // planning | active | paused | finished
	StartDate  time.Time       `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    *time.Time      `gorm:"type:date"                                      json:"end_date,omitempty"`
	Budget     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"budget"`
	Notes      string          `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Contractors []Contractor     `gorm:"many2many:project_contractors;foreignKey:ProjectID;joinForeignKey:ProjectID;references:ContractorID;joinReferences:ContractorID" json:"contractors,omitempty"`
	Workers     []Worker         `gorm:"many2many:project_workers;foreignKey:ProjectID;joinForeignKey:ProjectID;references:WorkerID;joinReferences:WorkerID"             json:"workers,omitempty"`
	Payments    []ProjectPayment `gorm:"foreignKey:ProjectID"                                                                                                           json:"payments,omitempty"`
	Concepts    []Concept        `gorm:"foreignKey:ProjectID"                                                                                                           json:"concepts,omitempty"`
	Expenses    []Expense        `gorm:"foreignKey:ProjectID"                                                                                                           json:"expenses,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// ProjectPayment 客户回款表，对应 project_payments
type ProjectPayment struct {
	ProjectPaymentID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_payment_id"`
	ProjectID        string          `gorm:"type:uuid;not null"                             json:"project_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	PaidAt           time.Time       `gorm:"type:date;not null"                             json:"paid_at"`
	Method           string          `gorm:"type:varchar(30)"                               json:"method,omitempty"` // cash | transfer | check
	Reference        string          `gorm:"type:varchar(100)"                              json:"reference,omitempty"`
	Notes            string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ProjectPayment) TableName() string { return "project_payments" }

// ProjectContractor 项目-承包商关联，对应 project_contractors
type ProjectContractor struct {
	ProjectID    string    `gorm:"type:uuid;primaryKey"`
	ContractorID string    `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (ProjectContractor) TableName() string { return "project_contractors" }

// ProjectWorker 项目-工人关联，对应 project_workers
type ProjectWorker struct {
	ProjectID string    `gorm:"type:uuid;primaryKey"`
	WorkerID  string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (ProjectWorker) TableName() string { return "project_workers" }
