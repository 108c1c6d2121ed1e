package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
	"obra-admin/backend/pkg/metrics"
)

const (
	dashboardCacheTTL   = 60 * time.Second
	dashboardTopCats    = 10
	dashboardRecentWeek = 8
)

// DashboardService 看板汇总业务接口
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
}

type dashboardService struct {
	repo    *repository.Repository
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService 创建 DashboardService 实例；cache 为 nil 时每次直接查询
func NewDashboardService(repo *repository.Repository, cache Cache, m *metrics.Metrics, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, cache: cache, metrics: m, logger: logger, now: time.Now}
}

// Summary 优先读取 Redis 缓存（60s），未命中时聚合查询后回写
func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	if s.cache != nil {
		var cached dto.DashboardSummary
		hit, err := s.cache.GetJSON(ctx, DashboardCacheKey, &cached)
		if err != nil {
			s.logger.Warn("读取看板缓存失败", zap.Error(err))
		}
		if hit {
			s.metrics.IncCacheLookup(DashboardCacheKey, "hit")
			return &cached, nil
		}
		s.metrics.IncCacheLookup(DashboardCacheKey, "miss")
	}

	summary, err := s.compute(ctx)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "dashboard.summary", "", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, DashboardCacheKey, summary, dashboardCacheTTL); err != nil {
			s.logger.Warn("写入看板缓存失败", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *dashboardService) compute(ctx context.Context) (*dto.DashboardSummary, error) {
	now := s.now().UTC()
	today := model.DateOnly(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	d := s.repo.Dashboard
	summary := &dto.DashboardSummary{
		GeneratedAt:      dto.FormatDateTime(now),
		ProjectsByStatus: map[string]int64{},
	}

	byStatus, err := d.ProjectsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		summary.ProjectsByStatus[row.Key] = row.Count
	}

	if summary.ActiveWorkers, err = d.CountActiveWorkers(ctx); err != nil {
		return nil, err
	}
	if summary.ActiveContractors, err = d.CountActiveContractors(ctx); err != nil {
		return nil, err
	}
	if summary.OpenProspects, err = d.CountOpenProspects(ctx); err != nil {
		return nil, err
	}
	if summary.ClientPaymentsMonth, err = d.SumClientPayments(ctx, monthStart, monthEnd); err != nil {
		return nil, err
	}
	if summary.ClientPaymentsYear, err = d.SumClientPayments(ctx, yearStart, yearEnd); err != nil {
		return nil, err
	}
	if summary.ExpensesMonth, err = d.SumExpenses(ctx, monthStart, monthEnd); err != nil {
		return nil, err
	}
	if summary.ExpensesYear, err = d.SumExpenses(ctx, yearStart, yearEnd); err != nil {
		return nil, err
	}

	payroll, err := d.PayrollTotals(ctx, today.Year())
	if err != nil {
		return nil, err
	}
	summary.PayrollPaidYear = payroll.Paid
	summary.PayrollPendingYear = payroll.Pending

	cats, err := d.ExpensesByCategory(ctx, yearStart, yearEnd, dashboardTopCats)
	if err != nil {
		return nil, err
	}
	summary.ExpensesByCategory = make([]dto.CategoryAmount, 0, len(cats))
	for _, c := range cats {
		summary.ExpensesByCategory = append(summary.ExpensesByCategory, dto.CategoryAmount{Category: c.Key, Amount: c.Amount})
	}

	weeks, err := s.repo.PayrollWeek.ListRecent(ctx, dashboardRecentWeek)
	if err != nil {
		return nil, err
	}
	summary.RecentWeeks = make([]dto.WeekTotals, 0, len(weeks))
	for _, w := range weeks {
		summary.RecentWeeks = append(summary.RecentWeeks, dto.WeekTotals{
			WeekID:       w.WeekID,
			Year:         w.Year,
			WeekNumber:   w.WeekNumber,
			StartDate:    dto.FormatDate(w.StartDate),
			TotalPaid:    w.TotalPaid,
			TotalPending: w.TotalPending,
		})
	}
	return summary, nil
}
