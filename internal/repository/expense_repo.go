package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// ExpenseFilter 支出列表过滤条件
type ExpenseFilter struct {
	ProjectID string
	Category  string
	Source    string
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int
}

// ExpenseRepository 一般支出数据访问接口
type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	GetByID(ctx context.Context, id string) (*model.Expense, error)
	GetByPayrollPayment(ctx context.Context, paymentID string) (*model.Expense, error)
	List(ctx context.Context, f ExpenseFilter) ([]model.Expense, int64, error)
	Update(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, id string) error
	DeleteByPayrollPayment(ctx context.Context, paymentID string) error
	DeleteByProject(ctx context.Context, projectID string) error
	DeleteByPayrollYear(ctx context.Context, year int) (int64, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Omit("Project").Create(e).Error
}

func (r *expenseRepo) GetByID(ctx context.Context, id string) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("expense_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) GetByPayrollPayment(ctx context.Context, paymentID string) (*model.Expense, error) {
	var e model.Expense
	if err := r.db.WithContext(ctx).Where("payroll_payment_id = ?", paymentID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) List(ctx context.Context, f ExpenseFilter) ([]model.Expense, int64, error) {
	var list []model.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Expense{})
	if f.ProjectID != "" {
		db = db.Where("project_id = ?", f.ProjectID)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Source != "" {
		db = db.Where("source = ?", f.Source)
	}
	if f.From != nil {
		db = db.Where("spent_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("spent_at <= ?", *f.To)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Project").
		Offset(f.Offset).Limit(f.Limit).
		Order("spent_at DESC, created_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *expenseRepo) Update(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("expense_id = ?", e.ExpenseID).
		Updates(map[string]interface{}{
			"project_id":  e.ProjectID,
			"category":    e.Category,
			"description": e.Description,
			"amount":      e.Amount,
			"spent_at":    e.SpentAt,
			"updated_by":  e.UpdatedBy,
		}).Error
}

func (r *expenseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("expense_id = ?", id).
		Delete(&model.Expense{}).Error
}

func (r *expenseRepo) DeleteByPayrollPayment(ctx context.Context, paymentID string) error {
	return r.db.WithContext(ctx).
		Where("payroll_payment_id = ?", paymentID).
		Delete(&model.Expense{}).Error
}

func (r *expenseRepo) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&model.Expense{}).Error
}

// DeleteByPayrollYear 删除某工资年度所有发放记录对应的自动记账支出
func (r *expenseRepo) DeleteByPayrollYear(ctx context.Context, year int) (int64, error) {
	db := r.db.WithContext(ctx)
	paymentIDs := db.Model(&model.PayrollPayment{}).
		Select("payroll_payments.payment_id").
		Joins("JOIN payroll_weeks ON payroll_weeks.week_id = payroll_payments.week_id").
		Where("payroll_weeks.year = ?", year)
	result := db.
		Where("source = ? AND payroll_payment_id IN (?)", model.ExpenseSourcePayroll, paymentIDs).
		Delete(&model.Expense{})
	return result.RowsAffected, result.Error
}
