package repository

import (
	"context"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// ListFilter 通用列表过滤条件
type ListFilter struct {
	Query      string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// ── Specialty ──

// SpecialtyRepository 工种数据访问接口
type SpecialtyRepository interface {
	Create(ctx context.Context, s *model.Specialty) error
	GetByID(ctx context.Context, id string) (*model.Specialty, error)
	GetByName(ctx context.Context, name string) (*model.Specialty, error)
	List(ctx context.Context, query string) ([]model.Specialty, error)
	Update(ctx context.Context, s *model.Specialty) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountUsage(ctx context.Context, id string) (int64, error)
}

type specialtyRepo struct {
	db *gorm.DB
}

// NewSpecialtyRepo 创建 SpecialtyRepository 实例
func NewSpecialtyRepo(db *gorm.DB) SpecialtyRepository {
	return &specialtyRepo{db: db}
}

func (r *specialtyRepo) Create(ctx context.Context, s *model.Specialty) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *specialtyRepo) GetByID(ctx context.Context, id string) (*model.Specialty, error) {
	var s model.Specialty
	if err := r.db.WithContext(ctx).Where("specialty_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *specialtyRepo) GetByName(ctx context.Context, name string) (*model.Specialty, error) {
	var s model.Specialty
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *specialtyRepo) List(ctx context.Context, query string) ([]model.Specialty, error) {
	var list []model.Specialty
	db := r.db.WithContext(ctx)
	if query != "" {
		db = db.Where("name ILIKE ?", likePattern(query))
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *specialtyRepo) Update(ctx context.Context, s *model.Specialty) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *specialtyRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Specialty{}).
		Where("specialty_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountUsage 统计仍引用该工种的在职工人与承包商数量
func (r *specialtyRepo) CountUsage(ctx context.Context, id string) (int64, error) {
	var workers, contractors int64
	if err := r.db.WithContext(ctx).Model(&model.Worker{}).
		Where("specialty_id = ? AND is_active = ?", id, true).
		Count(&workers).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Contractor{}).
		Where("specialty_id = ? AND is_active = ?", id, true).
		Count(&contractors).Error; err != nil {
		return 0, err
	}
	return workers + contractors, nil
}

// ── Contractor ──

// ContractorRepository 承包商数据访问接口
type ContractorRepository interface {
	Create(ctx context.Context, c *model.Contractor) error
	GetByID(ctx context.Context, id string) (*model.Contractor, error)
	List(ctx context.Context, f ListFilter) ([]model.Contractor, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Contractor, error)
	Update(ctx context.Context, c *model.Contractor) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type contractorRepo struct {
	db *gorm.DB
}

// NewContractorRepo 创建 ContractorRepository 实例
func NewContractorRepo(db *gorm.DB) ContractorRepository {
	return &contractorRepo{db: db}
}

func (r *contractorRepo) Create(ctx context.Context, c *model.Contractor) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contractorRepo) GetByID(ctx context.Context, id string) (*model.Contractor, error) {
	var c model.Contractor
	err := r.db.WithContext(ctx).
		Preload("Specialty").
		Where("contractor_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractorRepo) List(ctx context.Context, f ListFilter) ([]model.Contractor, int64, error) {
	var list []model.Contractor
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Contractor{})
	if f.Query != "" {
		p := likePattern(f.Query)
		db = db.Where("name ILIKE ? OR company ILIKE ?", p, p)
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Specialty").
		Offset(f.Offset).Limit(f.Limit).
		Order("name ASC").
		Find(&list).Error
	return list, total, err
}

func (r *contractorRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Contractor, error) {
	var list []model.Contractor
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("contractor_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *contractorRepo) Update(ctx context.Context, c *model.Contractor) error {
	return r.db.WithContext(ctx).Omit("Specialty").Save(c).Error
}

func (r *contractorRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Contractor{}).
		Where("contractor_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ── Worker ──

// WorkerRepository 工人数据访问接口
type WorkerRepository interface {
	Create(ctx context.Context, w *model.Worker) error
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	List(ctx context.Context, f ListFilter) ([]model.Worker, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Worker, error)
	Update(ctx context.Context, w *model.Worker) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type workerRepo struct {
	db *gorm.DB
}

// NewWorkerRepo 创建 WorkerRepository 实例
func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) Create(ctx context.Context, w *model.Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	var w model.Worker
	err := r.db.WithContext(ctx).
		Preload("Specialty").
		Where("worker_id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workerRepo) List(ctx context.Context, f ListFilter) ([]model.Worker, int64, error) {
	var list []model.Worker
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Worker{})
	if f.Query != "" {
		db = db.Where("name ILIKE ?", likePattern(f.Query))
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Specialty").
		Offset(f.Offset).Limit(f.Limit).
		Order("name ASC").
		Find(&list).Error
	return list, total, err
}

func (r *workerRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Worker, error) {
	var list []model.Worker
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("worker_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *workerRepo) Update(ctx context.Context, w *model.Worker) error {
	return r.db.WithContext(ctx).Omit("Specialty").Save(w).Error
}

func (r *workerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Worker{}).
		Where("worker_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
