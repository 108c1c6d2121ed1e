package model

// Contractor 承包商（分包）表，对应 contractors
type Contractor struct {
	ContractorID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contractor_id"`
	Name         string  `gorm:"type:varchar(150);not null"                     json:"name"`
	Company      string  `gorm:"type:varchar(150)"                              json:"company,omitempty"`
	Phone        string  `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Email        string  `gorm:"type:varchar(150)"                              json:"email,omitempty"`
	SpecialtyID  *string `gorm:"type:uuid"                                      json:"specialty_id,omitempty"`
	Notes        string  `gorm:"type:text"                                      json:"notes,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	// 关联
	Specialty *Specialty `gorm:"foreignKey:SpecialtyID;references:SpecialtyID" json:"specialty,omitempty"`
}

// TableName 指定表名
func (Contractor) TableName() string { return "contractors" }
