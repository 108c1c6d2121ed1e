package model

// Folder 文件管理器目录表，对应 folders
type Folder struct {
	FolderID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"folder_id"`
	Name      string  `gorm:"type:varchar(200);not null"                     json:"name"`
	ParentID  *string `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	ProjectID *string `gorm:"type:uuid"                                      json:"project_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Folder) TableName() string { return "folders" }

// StoredFile 文件元数据表，对应 stored_files（内容在 blob 存储中以 StorageKey 寻址）
type StoredFile struct {
	FileID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"file_id"`
	FolderID    *string `gorm:"type:uuid"                                      json:"folder_id,omitempty"`
	Name        string  `gorm:"type:varchar(255);not null"                     json:"name"`
	ContentType string  `gorm:"type:varchar(150);not null"                     json:"content_type"`
	Size        int64   `gorm:"not null"                                       json:"size"`
	StorageKey  string  `gorm:"type:varchar(300);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (StoredFile) TableName() string { return "stored_files" }
