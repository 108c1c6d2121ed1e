package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
)

// CountByKey 分组计数
type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AmountByKey 分组金额
type AmountByKey struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardRepository 看板聚合查询接口
type DashboardRepository interface {
	ProjectsByStatus(ctx context.Context) ([]CountByKey, error)
	CountActiveWorkers(ctx context.Context) (int64, error)
	CountActiveContractors(ctx context.Context) (int64, error)
	CountOpenProspects(ctx context.Context) (int64, error)
	SumClientPayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ExpensesByCategory(ctx context.Context, from, to time.Time, limit int) ([]AmountByKey, error)
	PayrollTotals(ctx context.Context, year int) (model.StatusTotals, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) ProjectsByStatus(ctx context.Context) ([]CountByKey, error) {
	var list []CountByKey
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&list).Error
	return list, err
}

func (r *dashboardRepo) CountActiveWorkers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Worker{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountActiveContractors(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Contractor{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

// CountOpenProspects 未成交也未流失的潜在客户数
func (r *dashboardRepo) CountOpenProspects(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Prospect{}).
		Where("status NOT IN ?", []string{model.ProspectStatusWon, model.ProspectStatusLost}).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepo) SumClientPayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.ProjectPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("paid_at BETWEEN ? AND ?", from, to).
		Row().Scan(&total)
	return total, err
}

func (r *dashboardRepo) SumExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("spent_at BETWEEN ? AND ?", from, to).
		Row().Scan(&total)
	return total, err
}

func (r *dashboardRepo) ExpensesByCategory(ctx context.Context, from, to time.Time, limit int) ([]AmountByKey, error) {
	var list []AmountByKey
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("category AS key, SUM(amount) AS amount").
		Where("spent_at BETWEEN ? AND ?", from, to).
		Group("category").
		Order("amount DESC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}

func (r *dashboardRepo) PayrollTotals(ctx context.Context, year int) (model.StatusTotals, error) {
	totals := model.StatusTotals{Paid: decimal.Zero, Pending: decimal.Zero}
	err := r.db.WithContext(ctx).
		Model(&model.PayrollWeek{}).
		Select("COALESCE(SUM(total_paid), 0), COALESCE(SUM(total_pending), 0)").
		Where("year = ?", year).
		Row().Scan(&totals.Paid, &totals.Pending)
	return totals, err
}
