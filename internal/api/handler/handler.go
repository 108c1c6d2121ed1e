package handler

import "obra-admin/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Payroll   *PayrollHandler
	Export    *ExportHandler
	Catalog   *CatalogHandler
	Project   *ProjectHandler
	Expense   *ExpenseHandler
	Prospect  *ProspectHandler
	History   *HistoryHandler
	File      *FileHandler
	Dashboard *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Payroll:   NewPayrollHandler(svc.Payroll),
		Export:    NewExportHandler(svc.Export),
		Catalog:   NewCatalogHandler(svc.Specialty, svc.Contractor, svc.Worker),
		Project:   NewProjectHandler(svc.Project, svc.Concept, svc.Archive),
		Expense:   NewExpenseHandler(svc.Expense),
		Prospect:  NewProspectHandler(svc.Prospect, svc.Archive),
		History:   NewHistoryHandler(svc.Archive),
		File:      NewFileHandler(svc.File),
		Dashboard: NewDashboardHandler(svc.Dashboard),
	}
}
