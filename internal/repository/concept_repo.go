package repository

import (
	"context"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// ConceptRepository 预算科目数据访问接口
type ConceptRepository interface {
	Create(ctx context.Context, c *model.Concept) error
	GetByID(ctx context.Context, id string) (*model.Concept, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Concept, error)
	Update(ctx context.Context, c *model.Concept) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error

	CreatePayment(ctx context.Context, pay *model.ConceptPayment) error
	GetPayment(ctx context.Context, id string) (*model.ConceptPayment, error)
	DeletePayment(ctx context.Context, id string) error
	DeletePaymentsByConcept(ctx context.Context, conceptID string) error
	DeletePaymentsByProject(ctx context.Context, projectID string) error
}

type conceptRepo struct {
	db *gorm.DB
}

func NewConceptRepo(db *gorm.DB) ConceptRepository {
	return &conceptRepo{db: db}
}

func (r *conceptRepo) Create(ctx context.Context, c *model.Concept) error {
	return r.db.WithContext(ctx).Omit("Payments").Create(c).Error
}

func (r *conceptRepo) GetByID(ctx context.Context, id string) (*model.Concept, error) {
	var c model.Concept
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("concept_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conceptRepo) ListByProject(ctx context.Context, projectID string) ([]model.Concept, error) {
	var list []model.Concept
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *conceptRepo) Update(ctx context.Context, c *model.Concept) error {
	return r.db.WithContext(ctx).
		Model(&model.Concept{}).
		Where("concept_id = ?", c.ConceptID).
		Updates(map[string]interface{}{
			"name":            c.Name,
			"description":     c.Description,
			"budgeted_amount": c.BudgetedAmount,
			"updated_by":      c.UpdatedBy,
		}).Error
}

func (r *conceptRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("concept_id = ?", id).
		Delete(&model.Concept{}).Error
}

func (r *conceptRepo) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&model.Concept{}).Error
}

// ── 科目付款 ──

func (r *conceptRepo) CreatePayment(ctx context.Context, pay *model.ConceptPayment) error {
	return r.db.WithContext(ctx).Create(pay).Error
}

func (r *conceptRepo) GetPayment(ctx context.Context, id string) (*model.ConceptPayment, error) {
	var pay model.ConceptPayment
	if err := r.db.WithContext(ctx).Where("concept_payment_id = ?", id).First(&pay).Error; err != nil {
		return nil, err
	}
	return &pay, nil
}

func (r *conceptRepo) DeletePayment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("concept_payment_id = ?", id).
		Delete(&model.ConceptPayment{}).Error
}

func (r *conceptRepo) DeletePaymentsByConcept(ctx context.Context, conceptID string) error {
	return r.db.WithContext(ctx).
		Where("concept_id = ?", conceptID).
		Delete(&model.ConceptPayment{}).Error
}

// DeletePaymentsByProject 删除项目下所有科目的付款
func (r *conceptRepo) DeletePaymentsByProject(ctx context.Context, projectID string) error {
	db := r.db.WithContext(ctx)
	return db.
		Where("concept_id IN (?)", db.Model(&model.Concept{}).Select("concept_id").Where("project_id = ?", projectID)).
		Delete(&model.ConceptPayment{}).Error
}
