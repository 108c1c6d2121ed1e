package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/response"
)

// FileHandler 文件管理 HTTP 处理器
type FileHandler struct {
	fileSvc service.FileService
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(fileSvc service.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// uploadForm multipart 表单中的非文件字段
type uploadForm struct {
	FolderID string `form:"folder_id" binding:"omitempty,uuid"`
}

// ── 目录 ──

// ListRoot 根目录内容
// GET /api/v1/folders
func (h *FileHandler) ListRoot(c *gin.Context) {
	contents, err := h.fileSvc.ListRoot(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, contents)
}

// GetFolder 目录内容（子目录 + 文件）
// GET /api/v1/folders/:id
func (h *FileHandler) GetFolder(c *gin.Context) {
	contents, err := h.fileSvc.GetFolder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, contents)
}

// CreateFolder 创建目录
// POST /api/v1/folders
func (h *FileHandler) CreateFolder(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	folder, err := h.fileSvc.CreateFolder(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, folder)
}

// UpdateFolder 重命名或移动目录
// PUT /api/v1/folders/:id
func (h *FileHandler) UpdateFolder(c *gin.Context) {
	var req dto.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	folder, err := h.fileSvc.UpdateFolder(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, folder)
}

// DeleteFolder 递归删除目录
// DELETE /api/v1/folders/:id
func (h *FileHandler) DeleteFolder(c *gin.Context) {
	if err := h.fileSvc.DeleteFolder(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 文件 ──

// Upload 上传文件
// POST /api/v1/files  (multipart: file, folder_id?)
func (h *FileHandler) Upload(c *gin.Context) {
	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	src, err := header.Open()
	if err != nil {
		response.BindError(c, err)
		return
	}
	defer src.Close()

	var folderID *string
	if form.FolderID != "" {
		folderID = &form.FolderID
	}

	file, err := h.fileSvc.Upload(c.Request.Context(), folderID, header.Filename,
		header.Header.Get("Content-Type"), src, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, file)
}

// Download 下载文件内容
// GET /api/v1/files/:id/download
func (h *FileHandler) Download(c *gin.Context) {
	meta, rc, err := h.fileSvc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, meta.Size, meta.ContentType, rc, map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.PathEscape(meta.Name),
	})
}

// UpdateFile 重命名或移动文件
// PUT /api/v1/files/:id
func (h *FileHandler) UpdateFile(c *gin.Context) {
	var req dto.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.fileSvc.UpdateFile(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, file)
}

// DeleteFile 删除文件
// DELETE /api/v1/files/:id
func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.fileSvc.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
