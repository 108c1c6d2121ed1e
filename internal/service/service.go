package service

import (
	"go.uber.org/zap"

	"obra-admin/backend/config"
	"obra-admin/backend/internal/repository"
	"obra-admin/backend/pkg/metrics"
	"obra-admin/backend/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Specialty  SpecialtyService
	Contractor ContractorService
	Worker     WorkerService
	Project    ProjectService
	Concept    ConceptService
	Expense    ExpenseService
	Prospect   ProspectService
	Archive    ArchiveService
	Payroll    PayrollService
	File       FileService
	Dashboard  DashboardService
	Export     ExportService
}

// Deps Service 层外部依赖；Cache 与 Metrics 可为 nil
type Deps struct {
	Cache   Cache
	Metrics *metrics.Metrics
	Blobs   storage.BlobStore
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	events := NewPaymentEventBus()
	if cfg.Payroll.PostExpenses {
		events.Subscribe(NewExpensePoster(cfg.Payroll.ExpenseCategory, logger))
	}

	return &Service{
		Specialty:  NewSpecialtyService(repo, logger),
		Contractor: NewContractorService(repo, logger),
		Worker:     NewWorkerService(repo, logger),
		Project:    NewProjectService(repo, deps.Cache, logger),
		Concept:    NewConceptService(repo, deps.Cache, logger),
		Expense:    NewExpenseService(repo, deps.Cache, logger),
		Prospect:   NewProspectService(repo, deps.Cache, deps.Metrics, logger),
		Archive:    NewArchiveService(repo, deps.Cache, deps.Metrics, logger),
		Payroll:    NewPayrollService(repo, events, deps.Cache, deps.Metrics, logger),
		File:       NewFileService(repo, deps.Blobs, cfg.Storage.MaxUploadSize, logger),
		Dashboard:  NewDashboardService(repo, deps.Cache, deps.Metrics, logger),
		Export:     NewExportService(repo, logger),
	}
}
