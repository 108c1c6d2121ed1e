package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 潜在客户状态
const (
	ProspectStatusNew       = "new"
	ProspectStatusContacted = "contacted"
	ProspectStatusQuoted    = "quoted"
	ProspectStatusWon       = "won"
	ProspectStatusLost      = "lost"
)

// Prospect 潜在客户（待转化项目）表，对应 prospects
type Prospect struct {
	ProspectID      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"prospect_id"`
	Name            string          `gorm:"type:varchar(200);not null"                     json:"name"`
	ClientName      string          `gorm:"type:varchar(200);not null"                     json:"client_name"`
	ContactPhone    string          `gorm:"type:varchar(30)"                               json:"contact_phone,omitempty"`
	ContactEmail    string          `gorm:"type:varchar(150)"                              json:"contact_email,omitempty"`
	Address         string          `gorm:"type:varchar(300)"                              json:"address,omitempty"`
	EstimatedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"estimated_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'new'"        json:"status"`
	Notes           string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel

	// 关联
	FollowUps []ProspectFollowUp `gorm:"foreignKey:ProspectID" json:"follow_ups,omitempty"`
}

// TableName 指定表名
func (Prospect) TableName() string { return "prospects" }

// ProspectFollowUp 跟进记录表，对应 prospect_follow_ups
type ProspectFollowUp struct {
	FollowUpID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"follow_up_id"`
	ProspectID string    `gorm:"type:uuid;not null"                             json:"prospect_id"`
	Note       string    `gorm:"type:text;not null"                             json:"note"`
	HappenedAt time.Time `gorm:"type:date;not null"                             json:"happened_at"`
	BaseModel
}

// TableName 指定表名
func (ProspectFollowUp) TableName() string { return "prospect_follow_ups" }
