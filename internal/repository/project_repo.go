package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ProjectFilter 项目列表过滤条件
type ProjectFilter struct {
	Query  string
	Status string
	Offset int
	Limit  int
}

// ProjectTotals 项目财务汇总（聚合查询结果）
type ProjectTotals struct {
	ClientPaid   decimal.Decimal
	ConceptSpent decimal.Decimal
	Expenses     decimal.Decimal
}

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetWithRelations(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]model.Project, int64, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id string) error

	ReplaceContractors(ctx context.Context, projectID string, contractorIDs []string) error
	ReplaceWorkers(ctx context.Context, projectID string, workerIDs []string) error
	DeleteAssociations(ctx context.Context, projectID string) error

	CreatePayment(ctx context.Context, pay *model.ProjectPayment) error
	GetPayment(ctx context.Context, id string) (*model.ProjectPayment, error)
	DeletePayment(ctx context.Context, id string) error
	DeletePaymentsByProject(ctx context.Context, projectID string) error

	Totals(ctx context.Context, projectID string) (*ProjectTotals, error)
}

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Omit("Contractors", "Workers", "Payments", "Concepts", "Expenses").Create(p).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where("project_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetWithRelations 加载项目及全部关联（详情页与归档快照使用）
// 关联的承包商/工人包含已软删除的记录，保证快照完整
func (r *projectRepo) GetWithRelations(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("Contractors", func(db *gorm.DB) *gorm.DB { return db.Unscoped().Order("name ASC") }).
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Unscoped().Order("name ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Preload("Concepts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Concepts.Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("spent_at ASC") }).
		Where("project_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, f ProjectFilter) ([]model.Project, int64, error) {
	var list []model.Project
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Project{})
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
		Order("start_date DESC, name ASC").
		Find(&list).Error
	return list, total, err
}

// Update 乐观锁更新
func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_id = ? AND version = ?", p.ProjectID, oldVersion).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"client_name": p.ClientName,
			"address":     p.Address,
			"status":      p.Status,
			"start_date":  p.StartDate,
			"end_date":    p.EndDate,
			"budget":      p.Budget,
			"notes":       p.Notes,
			"updated_by":  p.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", id).
		Delete(&model.Project{}).Error
}

// ── 多对多关联 ──

func (r *projectRepo) ReplaceContractors(ctx context.Context, projectID string, contractorIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&model.ProjectContractor{}).Error; err != nil {
		return err
	}
	if len(contractorIDs) == 0 {
		return nil
	}
	rows := make([]model.ProjectContractor, 0, len(contractorIDs))
	for _, id := range contractorIDs {
		rows = append(rows, model.ProjectContractor{ProjectID: projectID, ContractorID: id})
	}
	return db.Create(&rows).Error
}

func (r *projectRepo) ReplaceWorkers(ctx context.Context, projectID string, workerIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&model.ProjectWorker{}).Error; err != nil {
		return err
	}
	if len(workerIDs) == 0 {
		return nil
	}
	rows := make([]model.ProjectWorker, 0, len(workerIDs))
	for _, id := range workerIDs {
		rows = append(rows, model.ProjectWorker{ProjectID: projectID, WorkerID: id})
	}
	return db.Create(&rows).Error
}

// DeleteAssociations 删除项目的承包商与工人关联
func (r *projectRepo) DeleteAssociations(ctx context.Context, projectID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&model.ProjectContractor{}).Error; err != nil {
		return err
	}
	return db.Where("project_id = ?", projectID).Delete(&model.ProjectWorker{}).Error
}

// ── 客户回款 ──

func (r *projectRepo) CreatePayment(ctx context.Context, pay *model.ProjectPayment) error {
	return r.db.WithContext(ctx).Create(pay).Error
}

func (r *projectRepo) GetPayment(ctx context.Context, id string) (*model.ProjectPayment, error) {
	var pay model.ProjectPayment
	if err := r.db.WithContext(ctx).Where("project_payment_id = ?", id).First(&pay).Error; err != nil {
		return nil, err
	}
	return &pay, nil
}

func (r *projectRepo) DeletePayment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("project_payment_id = ?", id).
		Delete(&model.ProjectPayment{}).Error
}

func (r *projectRepo) DeletePaymentsByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&model.ProjectPayment{}).Error
}

// Totals 汇总项目的客户回款、科目付款与一般支出
func (r *projectRepo) Totals(ctx context.Context, projectID string) (*ProjectTotals, error) {
	var t ProjectTotals
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.ProjectPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectID).
		Row().Scan(&t.ClientPaid); err != nil {
		return nil, err
	}
	if err := db.Model(&model.ConceptPayment{}).
		Select("COALESCE(SUM(concept_payments.amount), 0)").
		Joins("JOIN concepts ON concepts.concept_id = concept_payments.concept_id").
		Where("concepts.project_id = ?", projectID).
		Row().Scan(&t.ConceptSpent); err != nil {
		return nil, err
	}
	if err := db.Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectID).
		Row().Scan(&t.Expenses); err != nil {
		return nil, err
	}
	return &t, nil
}
