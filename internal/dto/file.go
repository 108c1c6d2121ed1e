package dto

// ── 文件管理模块 DTO ──

// CreateFolderRequest 创建目录请求
type CreateFolderRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=200"`
	ParentID  *string `json:"parent_id"  binding:"omitempty,uuid"`
	ProjectID *string `json:"project_id" binding:"omitempty,uuid"`
}

// UpdateFolderRequest 重命名/移动目录请求（空字符串 parent_id 表示移到根目录）
type UpdateFolderRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=200"`
	ParentID  *string `json:"parent_id"`
	ProjectID *string `json:"project_id"`
}

// UpdateFileRequest 重命名/移动文件请求（空字符串 folder_id 表示移到根目录）
type UpdateFileRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=255"`
	FolderID *string `json:"folder_id"`
}

// FolderResponse 目录响应
type FolderResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// FolderContentsResponse 目录内容（根目录时 folder 为空）
type FolderContentsResponse struct {
	Folder  *FolderResponse  `json:"folder,omitempty"`
	Folders []FolderResponse `json:"folders"`
	Files   []FileResponse   `json:"files"`
}

// FileResponse 文件元数据响应
type FileResponse struct {
	ID          string  `json:"id"`
	FolderID    *string `json:"folder_id,omitempty"`
	Name        string  `json:"name"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	CreatedAt   string  `json:"created_at"`
}
