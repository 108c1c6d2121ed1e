package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"obra-admin/backend/internal/model"
)

// PayrollWeekRepository 工资周数据访问接口
type PayrollWeekRepository interface {
	BatchCreate(ctx context.Context, weeks []model.PayrollWeek) error
	CountByYear(ctx context.Context, year int) (int64, error)
	ListByYear(ctx context.Context, year int) ([]model.PayrollWeek, error)
	GetByID(ctx context.Context, id string) (*model.PayrollWeek, error)
	// LockByID 在当前事务内以 SELECT ... FOR UPDATE 锁定工资周行
	LockByID(ctx context.Context, id string) (*model.PayrollWeek, error)
	UpdateNotes(ctx context.Context, id, notes string, updatedBy *string) error
	SetClosed(ctx context.Context, id string, closed bool, updatedBy *string) error
	UpdateTotals(ctx context.Context, id string, totals model.StatusTotals) error
	DeleteByYear(ctx context.Context, year int) (int64, error)
	ListYears(ctx context.Context) ([]model.YearSummary, error)
	ListRecent(ctx context.Context, limit int) ([]model.PayrollWeek, error)

	// ── 当前周解析 ──
	FindContaining(ctx context.Context, day time.Time) (*model.PayrollWeek, error)
	FindNextAfter(ctx context.Context, day time.Time) (*model.PayrollWeek, error)
	FindLastBefore(ctx context.Context, day time.Time) (*model.PayrollWeek, error)
	FindLatest(ctx context.Context) (*model.PayrollWeek, error)
}

// PayrollPaymentRepository 工资发放数据访问接口
type PayrollPaymentRepository interface {
	Create(ctx context.Context, p *model.PayrollPayment) error
	GetByID(ctx context.Context, id string) (*model.PayrollPayment, error)
	ListByWeek(ctx context.Context, weekID string) ([]model.PayrollPayment, error)
	Update(ctx context.Context, p *model.PayrollPayment) error
	Delete(ctx context.Context, id string) error
	SumByStatus(ctx context.Context, weekID string) (model.StatusTotals, error)
}

// ── PayrollWeek Repository 实现 ──

type payrollWeekRepo struct {
	db *gorm.DB
}

func NewPayrollWeekRepo(db *gorm.DB) PayrollWeekRepository {
	return &payrollWeekRepo{db: db}
}

func (r *payrollWeekRepo) BatchCreate(ctx context.Context, weeks []model.PayrollWeek) error {
	if len(weeks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Payments").Create(&weeks).Error
}

func (r *payrollWeekRepo) CountByYear(ctx context.Context, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Where("year = ?", year).
		Count(&count).Error
	return count, err
}

func (r *payrollWeekRepo) ListByYear(ctx context.Context, year int) ([]model.PayrollWeek, error) {
	var weeks []model.PayrollWeek
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("week_number ASC").
		Find(&weeks).Error
	return weeks, err
}

func (r *payrollWeekRepo) GetByID(ctx context.Context, id string) (*model.PayrollWeek, error) {
	var w model.PayrollWeek
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("pay_date ASC, created_at ASC") }).
		Where("week_id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *payrollWeekRepo) LockByID(ctx context.Context, id string) (*model.PayrollWeek, error) {
	var w model.PayrollWeek
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("week_id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *payrollWeekRepo) UpdateNotes(ctx context.Context, id, notes string, updatedBy *string) error {
	return r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Where("week_id = ?", id).
		Updates(map[string]interface{}{
			"notes":      notes,
			"updated_by": updatedBy,
		}).Error
}

func (r *payrollWeekRepo) SetClosed(ctx context.Context, id string, closed bool, updatedBy *string) error {
	return r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Where("week_id = ?", id).
		Updates(map[string]interface{}{
			"closed":     closed,
			"updated_by": updatedBy,
		}).Error
}

func (r *payrollWeekRepo) UpdateTotals(ctx context.Context, id string, totals model.StatusTotals) error {
	return r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Where("week_id = ?", id).
		Updates(map[string]interface{}{
			"total_paid":    totals.Paid,
			"total_pending": totals.Pending,
		}).Error
}

// DeleteByYear 删除某年全部工资周，发放记录由外键级联删除
func (r *payrollWeekRepo) DeleteByYear(ctx context.Context, year int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("year = ?", year).
		Delete(&model.PayrollWeek{})
	return result.RowsAffected, result.Error
}

func (r *payrollWeekRepo) ListYears(ctx context.Context) ([]model.YearSummary, error) {
	var list []model.YearSummary
	err := r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Select(`year,
			COUNT(*) AS weeks,
			COUNT(*) FILTER (WHERE closed) AS closed_weeks,
			COALESCE(SUM(total_paid), 0) AS total_paid,
			COALESCE(SUM(total_pending), 0) AS total_pending`).
		Group("year").
		Order("year DESC").
		Scan(&list).Error
	return list, err
}

func (r *payrollWeekRepo) ListRecent(ctx context.Context, limit int) ([]model.PayrollWeek, error) {
	var weeks []model.PayrollWeek
	err := r.db.WithContext(ctx).
		Where("start_date <= CURRENT_DATE").
		Order("start_date DESC").
		Limit(limit).
		Find(&weeks).Error
	return weeks, err
}

func (r *payrollWeekRepo) FindContaining(ctx context.Context, day time.Time) (*model.PayrollWeek, error) {
	return r.findOne(ctx, "start_date ASC", "start_date <= ? AND end_date >= ?", day, day)
}

func (r *payrollWeekRepo) FindNextAfter(ctx context.Context, day time.Time) (*model.PayrollWeek, error) {
	return r.findOne(ctx, "start_date ASC", "start_date > ?", day)
}

func (r *payrollWeekRepo) FindLastBefore(ctx context.Context, day time.Time) (*model.PayrollWeek, error) {
	return r.findOne(ctx, "end_date DESC", "end_date < ?", day)
}

// FindLatest 最近有数据年份中的最后一周
func (r *payrollWeekRepo) FindLatest(ctx context.Context) (*model.PayrollWeek, error) {
	var w model.PayrollWeek
	err := r.db.WithContext(ctx).
		Order("year DESC, week_number DESC").
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *payrollWeekRepo) findOne(ctx context.Context, order string, query string, args ...interface{}) (*model.PayrollWeek, error) {
	var w model.PayrollWeek
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order(order).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ── PayrollPayment Repository 实现 ──

type payrollPaymentRepo struct {
	db *gorm.DB
}

func NewPayrollPaymentRepo(db *gorm.DB) PayrollPaymentRepository {
	return &payrollPaymentRepo{db: db}
}

func (r *payrollPaymentRepo) Create(ctx context.Context, p *model.PayrollPayment) error {
	return r.db.WithContext(ctx).Omit("Worker").Create(p).Error
}

func (r *payrollPaymentRepo) GetByID(ctx context.Context, id string) (*model.PayrollPayment, error) {
	var p model.PayrollPayment
	if err := r.db.WithContext(ctx).Where("payment_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payrollPaymentRepo) ListByWeek(ctx context.Context, weekID string) ([]model.PayrollPayment, error) {
	var list []model.PayrollPayment
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("pay_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *payrollPaymentRepo) Update(ctx context.Context, p *model.PayrollPayment) error {
	return r.db.WithContext(ctx).
		Model(&model.PayrollPayment{}).
		Where("payment_id = ?", p.PaymentID).
		Updates(map[string]interface{}{
			"worker_id":      p.WorkerID,
			"recipient_name": p.RecipientName,
			"amount":         p.Amount,
			"pay_date":       p.PayDate,
			"status":         p.Status,
			"concept":        p.Concept,
			"notes":          p.Notes,
			"updated_by":     p.UpdatedBy,
		}).Error
}

func (r *payrollPaymentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		Delete(&model.PayrollPayment{}).Error
}

// SumByStatus 按状态汇总某周发放金额，无记录时为 0
func (r *payrollPaymentRepo) SumByStatus(ctx context.Context, weekID string) (model.StatusTotals, error) {
	var rows []struct {
		Status string
		Total  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.PayrollPayment{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Where("week_id = ?", weekID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return model.StatusTotals{}, err
	}

	totals := model.StatusTotals{Paid: decimal.Zero, Pending: decimal.Zero}
	for _, row := range rows {
		switch row.Status {
		case model.PaymentStatusPaid:
			totals.Paid = row.Total
		case model.PaymentStatusPending:
			totals.Pending = row.Total
		}
	}
	return totals, nil
}
