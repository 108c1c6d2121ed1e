package repository

import (
	"context"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// HistoryRepository 历史归档数据访问接口（只增不改）
type HistoryRepository interface {
	CreateProject(ctx context.Context, h *model.ProjectHistory) error
	GetProject(ctx context.Context, id string) (*model.ProjectHistory, error)
	ListProjects(ctx context.Context, query string, offset, limit int) ([]model.ProjectHistory, int64, error)

	CreateProspect(ctx context.Context, h *model.ProspectHistory) error
	GetProspect(ctx context.Context, id string) (*model.ProspectHistory, error)
	ListProspects(ctx context.Context, query, reason string, offset, limit int) ([]model.ProspectHistory, int64, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) CreateProject(ctx context.Context, h *model.ProjectHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historyRepo) GetProject(ctx context.Context, id string) (*model.ProjectHistory, error) {
	var h model.ProjectHistory
	if err := r.db.WithContext(ctx).Where("history_id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *historyRepo) ListProjects(ctx context.Context, query string, offset, limit int) ([]model.ProjectHistory, int64, error) {
	var list []model.ProjectHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ProjectHistory{})
	if query != "" {
		db = db.Where("name ILIKE ?", likePattern(query))
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Offset(offset).Limit(limit).
		Order("archived_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *historyRepo) CreateProspect(ctx context.Context, h *model.ProspectHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historyRepo) GetProspect(ctx context.Context, id string) (*model.ProspectHistory, error) {
	var h model.ProspectHistory
	if err := r.db.WithContext(ctx).Where("history_id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *historyRepo) ListProspects(ctx context.Context, query, reason string, offset, limit int) ([]model.ProspectHistory, int64, error) {
	var list []model.ProspectHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ProspectHistory{})
	if query != "" {
		db = db.Where("name ILIKE ?", likePattern(query))
	}
	if reason != "" {
		db = db.Where("reason = ?", reason)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Offset(offset).Limit(limit).
		Order("archived_at DESC").
		Find(&list).Error
	return list, total, err
}
