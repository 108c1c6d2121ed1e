package repository

import (
	"context"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// FolderRepository 目录数据访问接口
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) error
	GetByID(ctx context.Context, id string) (*model.Folder, error)
	ListChildren(ctx context.Context, parentID *string) ([]model.Folder, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Folder, error)
	Update(ctx context.Context, f *model.Folder) error
	// ListSubtreeIDs 返回目录自身及全部子孙目录 ID
	ListSubtreeIDs(ctx context.Context, id string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	ClearProjectLink(ctx context.Context, projectID string) error
}

// FileRepository 文件元数据访问接口
type FileRepository interface {
	Create(ctx context.Context, f *model.StoredFile) error
	GetByID(ctx context.Context, id string) (*model.StoredFile, error)
	ListByFolder(ctx context.Context, folderID *string) ([]model.StoredFile, error)
	ListByFolders(ctx context.Context, folderIDs []string) ([]model.StoredFile, error)
	Update(ctx context.Context, f *model.StoredFile) error
	Delete(ctx context.Context, id string) error
	DeleteByFolders(ctx context.Context, folderIDs []string) error
}

// ── Folder Repository 实现 ──

type folderRepo struct {
	db *gorm.DB
}

func NewFolderRepo(db *gorm.DB) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, f *model.Folder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	var f model.Folder
	if err := r.db.WithContext(ctx).Where("folder_id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *folderRepo) ListChildren(ctx context.Context, parentID *string) ([]model.Folder, error) {
	var list []model.Folder
	db := r.db.WithContext(ctx)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *folderRepo) ListByProject(ctx context.Context, projectID string) ([]model.Folder, error) {
	var list []model.Folder
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *folderRepo) Update(ctx context.Context, f *model.Folder) error {
	return r.db.WithContext(ctx).
		Model(&model.Folder{}).
		Where("folder_id = ?", f.FolderID).
		Updates(map[string]interface{}{
			"name":       f.Name,
			"parent_id":  f.ParentID,
			"project_id": f.ProjectID,
			"updated_by": f.UpdatedBy,
		}).Error
}

func (r *folderRepo) ListSubtreeIDs(ctx context.Context, id string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE subtree AS (
			SELECT folder_id FROM folders WHERE folder_id = ?
			UNION ALL
			SELECT f.folder_id FROM folders f JOIN subtree s ON f.parent_id = s.folder_id
		)
		SELECT folder_id FROM subtree`, id).
		Scan(&ids).Error
	return ids, err
}

// DeleteByIDs 删除一组目录；子目录在前，满足 parent_id 自引用外键
func (r *folderRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Folder{}).
		Where("folder_id IN ?", ids).
		Update("parent_id", nil).Error; err != nil {
		return err
	}
	return db.Where("folder_id IN ?", ids).Delete(&model.Folder{}).Error
}

func (r *folderRepo) ClearProjectLink(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Folder{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error
}

// ── File Repository 实现 ──

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.StoredFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.StoredFile, error) {
	var f model.StoredFile
	if err := r.db.WithContext(ctx).Where("file_id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) ListByFolder(ctx context.Context, folderID *string) ([]model.StoredFile, error) {
	var list []model.StoredFile
	db := r.db.WithContext(ctx)
	if folderID == nil {
		db = db.Where("folder_id IS NULL")
	} else {
		db = db.Where("folder_id = ?", *folderID)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *fileRepo) ListByFolders(ctx context.Context, folderIDs []string) ([]model.StoredFile, error) {
	var list []model.StoredFile
	if len(folderIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("folder_id IN ?", folderIDs).Find(&list).Error
	return list, err
}

func (r *fileRepo) Update(ctx context.Context, f *model.StoredFile) error {
	return r.db.WithContext(ctx).
		Model(&model.StoredFile{}).
		Where("file_id = ?", f.FileID).
		Updates(map[string]interface{}{
			"name":       f.Name,
			"folder_id":  f.FolderID,
			"updated_by": f.UpdatedBy,
		}).Error
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("file_id = ?", id).
		Delete(&model.StoredFile{}).Error
}

func (r *fileRepo) DeleteByFolders(ctx context.Context, folderIDs []string) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("folder_id IN ?", folderIDs).
		Delete(&model.StoredFile{}).Error
}
