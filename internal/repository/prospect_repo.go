package repository

import (
	"context"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// ProspectFilter 潜在客户列表过滤条件
type ProspectFilter struct {
	Query  string
	Status string
	Offset int
	Limit  int
}

// ProspectRepository 潜在客户数据访问接口
type ProspectRepository interface {
	Create(ctx context.Context, p *model.Prospect) error
	GetByID(ctx context.Context, id string) (*model.Prospect, error)
	List(ctx context.Context, f ProspectFilter) ([]model.Prospect, int64, error)
	Update(ctx context.Context, p *model.Prospect) error
	Delete(ctx context.Context, id string) error

	CreateFollowUp(ctx context.Context, f *model.ProspectFollowUp) error
	DeleteFollowUps(ctx context.Context, prospectID string) error
}

type prospectRepo struct {
	db *gorm.DB
}

func NewProspectRepo(db *gorm.DB) ProspectRepository {
	return &prospectRepo{db: db}
}

func (r *prospectRepo) Create(ctx context.Context, p *model.Prospect) error {
	return r.db.WithContext(ctx).Omit("FollowUps").Create(p).Error
}

func (r *prospectRepo) GetByID(ctx context.Context, id string) (*model.Prospect, error) {
	var p model.Prospect
	err := r.db.WithContext(ctx).
		Preload("FollowUps", func(db *gorm.DB) *gorm.DB { return db.Order("happened_at ASC, created_at ASC") }).
		Where("prospect_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prospectRepo) List(ctx context.Context, f ProspectFilter) ([]model.Prospect, int64, error) {
	var list []model.Prospect
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Prospect{})
	if f.Query != "" {
		p := likePattern(f.Query)
		db = db.Where("name ILIKE ? OR client_name ILIKE ?", p, p)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Offset(f.Offset).Limit(f.Limit).
		Order("created_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *prospectRepo) Update(ctx context.Context, p *model.Prospect) error {
	return r.db.WithContext(ctx).
		Model(&model.Prospect{}).
		Where("prospect_id = ?", p.ProspectID).
		Updates(map[string]interface{}{
			"name":             p.Name,
			"client_name":      p.ClientName,
			"contact_phone":    p.ContactPhone,
			"contact_email":    p.ContactEmail,
			"address":          p.Address,
			"estimated_amount": p.EstimatedAmount,
			"status":           p.Status,
			"notes":            p.Notes,
			"updated_by":       p.UpdatedBy,
		}).Error
}

func (r *prospectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("prospect_id = ?", id).
		Delete(&model.Prospect{}).Error
}

func (r *prospectRepo) CreateFollowUp(ctx context.Context, f *model.ProspectFollowUp) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *prospectRepo) DeleteFollowUps(ctx context.Context, prospectID string) error {
	return r.db.WithContext(ctx).
		Where("prospect_id = ?", prospectID).
		Delete(&model.ProspectFollowUp{}).Error
}
