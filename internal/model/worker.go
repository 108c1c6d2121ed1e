package model

import "github.com/shopspring/decimal"

// Worker 工人表，对应 workers
type Worker struct {
	WorkerID    string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"worker_id"`
	Name        string          `gorm:"type:varchar(150);not null"                     json:"name"`
	Phone       string          `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	SpecialtyID *string         `gorm:"type:uuid"                                      json:"specialty_id,omitempty"`
	DailyRate   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"daily_rate"`
	IsActive    bool            `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	// 关联
	Specialty *Specialty `gorm:"foreignKey:SpecialtyID;references:SpecialtyID" json:"specialty,omitempty"`
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }
