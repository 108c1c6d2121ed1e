package model

// Specialty 工种/专业表，对应 specialties
type Specialty struct {
	SpecialtyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"specialty_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Specialty) TableName() string { return "specialties" }
