package dto

import "github.com/shopspring/decimal"

// DashboardSummary 看板汇总
type DashboardSummary struct {
	GeneratedAt         string           `json:"generated_at"`
	ProjectsByStatus    map[string]int64 `json:"projects_by_status"`
	ActiveWorkers       int64            `json:"active_workers"`
	ActiveContractors   int64            `json:"active_contractors"`
	OpenProspects       int64            `json:"open_prospects"`
	ClientPaymentsMonth decimal.Decimal  `json:"client_payments_month"`
	ClientPaymentsYear  decimal.Decimal  `json:"client_payments_year"`
	ExpensesMonth       decimal.Decimal  `json:"expenses_month"`
	ExpensesYear        decimal.Decimal  `json:"expenses_year"`
	PayrollPaidYear     decimal.Decimal  `json:"payroll_paid_year"`
	PayrollPendingYear  decimal.Decimal  `json:"payroll_pending_year"`
	ExpensesByCategory  []CategoryAmount `json:"expenses_by_category"`
	RecentWeeks         []WeekTotals     `json:"recent_weeks"`
}

// CategoryAmount 支出类别合计
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// WeekTotals 工资周合计
type WeekTotals struct {
	WeekID       string          `json:"week_id"`
	Year         int             `json:"year"`
	WeekNumber   int             `json:"week_number"`
	StartDate    string          `json:"start_date"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}
