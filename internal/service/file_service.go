package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
	"obra-admin/backend/pkg/storage"
)

// ── 文件管理模块业务错误 ──

var (
	ErrFolderNotFound  = pkgerrors.NewNotFound(44001, "目录不存在")
	ErrFileNotFound    = pkgerrors.NewNotFound(44002, "文件不存在")
	ErrFolderCycle     = pkgerrors.NewConflict(44003, "不能把目录移动到自身或其子目录下")
	ErrFileTooLarge    = pkgerrors.NewValidation(44004, "文件超过大小限制")
	ErrInvalidFileName = pkgerrors.NewValidation(44005, "文件名无效")
)

// FileService 文件管理器业务接口
type FileService interface {
	ListRoot(ctx context.Context) (*dto.FolderContentsResponse, error)
	GetFolder(ctx context.Context, id string) (*dto.FolderContentsResponse, error)
	CreateFolder(ctx context.Context, req *dto.CreateFolderRequest, callerID string) (*dto.FolderResponse, error)
	UpdateFolder(ctx context.Context, id string, req *dto.UpdateFolderRequest, callerID string) (*dto.FolderResponse, error)
	DeleteFolder(ctx context.Context, id string) error

	Upload(ctx context.Context, folderID *string, name, contentType string, r io.Reader, callerID string) (*dto.FileResponse, error)
	Download(ctx context.Context, id string) (*dto.FileResponse, io.ReadCloser, error)
	UpdateFile(ctx context.Context, id string, req *dto.UpdateFileRequest, callerID string) (*dto.FileResponse, error)
	DeleteFile(ctx context.Context, id string) error
}

type fileService struct {
	repo    *repository.Repository
	blobs   storage.BlobStore
	maxSize int64
	logger  *zap.Logger
}

// NewFileService 创建 FileService 实例
func NewFileService(repo *repository.Repository, blobs storage.BlobStore, maxSize int64, logger *zap.Logger) FileService {
	return &fileService{repo: repo, blobs: blobs, maxSize: maxSize, logger: logger}
}

// ────────────────────── Folders ──────────────────────

func (s *fileService) ListRoot(ctx context.Context) (*dto.FolderContentsResponse, error) {
	return s.contents(ctx, nil)
}

func (s *fileService) GetFolder(ctx context.Context, id string) (*dto.FolderContentsResponse, error) {
	if err := requireID(id, ErrFolderNotFound); err != nil {
		return nil, err
	}
	folder, err := s.repo.Folder.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrFolderNotFound)
	}
	return s.contents(ctx, folder)
}

func (s *fileService) contents(ctx context.Context, folder *model.Folder) (*dto.FolderContentsResponse, error) {
	var parentID *string
	resp := &dto.FolderContentsResponse{}
	if folder != nil {
		parentID = &folder.FolderID
		fr := toFolderResponse(folder)
		resp.Folder = &fr
	}

	children, err := s.repo.Folder.ListChildren(ctx, parentID)
	if err != nil {
		return nil, pkgerrors.Storage(err)
	}
	files, err := s.repo.File.ListByFolder(ctx, parentID)
	if err != nil {
		return nil, pkgerrors.Storage(err)
	}
	resp.Folders = make([]dto.FolderResponse, 0, len(children))
	for i := range children {
		resp.Folders = append(resp.Folders, toFolderResponse(&children[i]))
	}
	resp.Files = make([]dto.FileResponse, 0, len(files))
	for i := range files {
		resp.Files = append(resp.Files, toFileResponse(&files[i]))
	}
	return resp, nil
}

func (s *fileService) CreateFolder(ctx context.Context, req *dto.CreateFolderRequest, callerID string) (*dto.FolderResponse, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFolder(ctx, req.ParentID); err != nil {
		return nil, err
	}
	if err := s.ensureProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	f := &model.Folder{Name: name, ParentID: req.ParentID, ProjectID: req.ProjectID}
	f.Audit(callerID)
	if err := s.repo.Folder.Create(ctx, f); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "folder.create", name, err)
		return nil, err
	}
	resp := toFolderResponse(f)
	return &resp, nil
}

// UpdateFolder 重命名/移动目录；移动时拒绝形成环
func (s *fileService) UpdateFolder(ctx context.Context, id string, req *dto.UpdateFolderRequest, callerID string) (*dto.FolderResponse, error) {
	if err := requireID(id, ErrFolderNotFound); err != nil {
		return nil, err
	}
	f, err := s.repo.Folder.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrFolderNotFound)
	}

	if req.Name != nil {
		if f.Name, err = cleanName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ParentID != nil {
		parentID, err := optionalID("parent_id", *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parentID != nil {
			if err := s.ensureFolder(ctx, parentID); err != nil {
				return nil, err
			}
			subtree, err := s.repo.Folder.ListSubtreeIDs(ctx, id)
			if err != nil {
				return nil, pkgerrors.Storage(err)
			}
			for _, sid := range subtree {
				if sid == *parentID {
					return nil, ErrFolderCycle
				}
			}
		}
		f.ParentID = parentID
	}
	if req.ProjectID != nil {
		projectID, err := optionalID("project_id", *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureProject(ctx, projectID); err != nil {
			return nil, err
		}
		f.ProjectID = projectID
	}
	f.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Folder.Update(ctx, f); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "folder.update", id, err)
		return nil, err
	}
	resp := toFolderResponse(f)
	return &resp, nil
}

// DeleteFolder 递归删除目录及其文件；元数据提交后再删除 blob
func (s *fileService) DeleteFolder(ctx context.Context, id string) error {
	if err := requireID(id, ErrFolderNotFound); err != nil {
		return err
	}
	var files []model.StoredFile
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Folder.GetByID(ctx, id); err != nil {
			return storageErr(err, ErrFolderNotFound)
		}
		ids, err := tx.Folder.ListSubtreeIDs(ctx, id)
		if err != nil {
			return err
		}
		if files, err = tx.File.ListByFolders(ctx, ids); err != nil {
			return err
		}
		if err := tx.File.DeleteByFolders(ctx, ids); err != nil {
			return err
		}
		return tx.Folder.DeleteByIDs(ctx, ids)
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "folder.delete", id, err)
		return err
	}

	for i := range files {
		s.removeBlob(ctx, files[i].StorageKey)
	}
	s.logger.Info("目录已删除", zap.String("folder_id", id), zap.Int("files", len(files)))
	return nil
}

// ────────────────────── Files ──────────────────────

// Upload 先写 blob 再写元数据；元数据写入失败时回收 blob
func (s *fileService) Upload(ctx context.Context, folderID *string, name, contentType string, r io.Reader, callerID string) (*dto.FileResponse, error) {
	name, err := cleanName(path.Base(strings.ReplaceAll(name, `\`, "/")))
	if err != nil {
		return nil, err
	}
	if err := s.ensureFolder(ctx, folderID); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, size, err := s.blobs.Put(ctx, r, s.maxSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, ErrFileTooLarge.WithField("file", "max_size")
		}
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "file.upload", name, err)
		return nil, err
	}

	f := &model.StoredFile{
		FolderID:    folderID,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		StorageKey:  key,
	}
	f.Audit(callerID)
	if err := s.repo.File.Create(ctx, f); err != nil {
		s.removeBlob(ctx, key)
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "file.upload", name, err)
		return nil, err
	}

	s.logger.Info("文件已上传", zap.String("file_id", f.FileID), zap.Int64("size", size))
	resp := toFileResponse(f)
	return &resp, nil
}

func (s *fileService) Download(ctx context.Context, id string) (*dto.FileResponse, io.ReadCloser, error) {
	if err := requireID(id, ErrFileNotFound); err != nil {
		return nil, nil, err
	}
	f, err := s.repo.File.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storageErr(err, ErrFileNotFound)
	}
	rc, err := s.blobs.Open(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("文件内容缺失", zap.String("file_id", id), zap.String("key", f.StorageKey))
			return nil, nil, ErrFileNotFound
		}
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "file.download", id, err)
		return nil, nil, err
	}
	resp := toFileResponse(f)
	return &resp, rc, nil
}

func (s *fileService) UpdateFile(ctx context.Context, id string, req *dto.UpdateFileRequest, callerID string) (*dto.FileResponse, error) {
	if err := requireID(id, ErrFileNotFound); err != nil {
		return nil, err
	}
	f, err := s.repo.File.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrFileNotFound)
	}
	if req.Name != nil {
		if f.Name, err = cleanName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.FolderID != nil {
		folderID, err := optionalID("folder_id", *req.FolderID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureFolder(ctx, folderID); err != nil {
			return nil, err
		}
		f.FolderID = folderID
	}
	f.UpdatedBy = auditPtr(callerID)

	if err := s.repo.File.Update(ctx, f); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "file.update", id, err)
		return nil, err
	}
	resp := toFileResponse(f)
	return &resp, nil
}

func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	if err := requireID(id, ErrFileNotFound); err != nil {
		return err
	}
	f, err := s.repo.File.GetByID(ctx, id)
	if err != nil {
		return storageErr(err, ErrFileNotFound)
	}
	if err := s.repo.File.Delete(ctx, id); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "file.delete", id, err)
		return err
	}
	s.removeBlob(ctx, f.StorageKey)
	return nil
}

// ── 内部辅助方法 ──

// removeBlob 删除 blob；失败只记录日志，孤儿内容不影响元数据一致性
func (s *fileService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("删除文件内容失败", zap.String("key", key), zap.Error(err))
	}
}

func (s *fileService) ensureFolder(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.Folder.GetByID(ctx, *id); err != nil {
		if isNotFound(err) {
			return ErrFolderNotFound.WithField("folder_id", "exists")
		}
		return pkgerrors.Storage(err)
	}
	return nil
}

func (s *fileService) ensureProject(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.Project.GetByID(ctx, *id); err != nil {
		if isNotFound(err) {
			return ErrProjectNotFound.WithField("project_id", "exists")
		}
		return pkgerrors.Storage(err)
	}
	return nil
}

// cleanName 去除首尾空白，拒绝空名与路径分隔符
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidFileName.WithField("name", "filename")
	}
	return name, nil
}

func toFolderResponse(f *model.Folder) dto.FolderResponse {
	return dto.FolderResponse{
		ID:        f.FolderID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		ProjectID: f.ProjectID,
		CreatedAt: dto.FormatDateTime(f.CreatedAt),
	}
}

func toFileResponse(f *model.StoredFile) dto.FileResponse {
	return dto.FileResponse{
		ID:          f.FileID,
		FolderID:    f.FolderID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		CreatedAt:   dto.FormatDateTime(f.CreatedAt),
	}
}
