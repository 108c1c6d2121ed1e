package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound        = pkgerrors.NewNotFound(30001, "项目不存在")
	ErrProjectPaymentNotFound = pkgerrors.NewNotFound(30002, "客户回款记录不存在")
	ErrAssociationTargetGone  = pkgerrors.NewValidation(30003, "部分关联对象不存在或已删除")
)

// ProjectService 项目业务接口（删除经由 ArchiveService 归档）
type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectDetailResponse, error)
	List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)

	SetContractors(ctx context.Context, id string, ids []string) (*dto.ProjectDetailResponse, error)
	SetWorkers(ctx context.Context, id string, ids []string) (*dto.ProjectDetailResponse, error)

	AddPayment(ctx context.Context, id string, req *dto.CreateProjectPaymentRequest, callerID string) (*dto.ProjectPaymentResponse, error)
	DeletePayment(ctx context.Context, id, paymentID string) error

	Summary(ctx context.Context, id string) (*dto.ProjectSummaryResponse, error)
}

type projectService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, cache Cache, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalEnd(start, req.EndDate)
	if err != nil {
		return nil, err
	}
	budget, err := nonNegative("budget", req.Budget)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.ProjectStatusPlanning
	}

	p := &model.Project{
		Name:       strings.TrimSpace(req.Name),
		ClientName: strings.TrimSpace(req.ClientName),
		Address:    req.Address,
		Status:     status,
		StartDate:  start,
		EndDate:    end,
		Budget:     budget,
		Notes:      req.Notes,
	}
	p.Version = 1
	p.Audit(callerID)
	if err := s.repo.Project.Create(ctx, p); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.create", p.Name, err)
		return nil, err
	}

	s.logger.Info("项目已创建", zap.String("project_id", p.ProjectID), zap.String("name", p.Name))
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProjectResponse(p), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *projectService) GetByID(ctx context.Context, id string) (*dto.ProjectDetailResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	p, err := s.repo.Project.GetWithRelations(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}
	return toProjectDetailResponse(p), nil
}

func (s *projectService) List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	list, total, err := s.repo.Project.List(ctx, repository.ProjectFilter{
		Query:  req.Q,
		Status: req.Status,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.list", "", err)
		return nil, 0, err
	}
	result := make([]dto.ProjectResponse, 0, len(list))
	for i := range list {
		result = append(result, *toProjectResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 局部更新；请求携带 version 时先行比对，写入时由乐观锁兜底
func (s *projectService) Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	p, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}
	if req.Version != nil && *req.Version != p.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.StartDate != nil {
		if p.StartDate, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			p.EndDate = nil
		} else if p.EndDate, err = parseOptionalEnd(p.StartDate, req.EndDate); err != nil {
			return nil, err
		}
	} else if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, ErrInvalidDateRange.WithField("end_date", "gtefield=StartDate")
	}
	if req.Budget != nil {
		if p.Budget, err = nonNegative("budget", req.Budget); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClientName != nil {
		p.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	p.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Project.Update(ctx, p); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.update", id, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProjectResponse(p), nil
}

// ────────────────────── Associations ──────────────────────

// SetContractors 整体替换项目承包商（事务内先删后插）
func (s *projectService) SetContractors(ctx context.Context, id string, ids []string) (*dto.ProjectDetailResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Project.GetByID(ctx, id); err != nil {
			return storageErr(err, ErrProjectNotFound)
		}
		found, err := tx.Contractor.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return ErrAssociationTargetGone.WithField("ids", "exists")
		}
		return tx.Project.ReplaceContractors(ctx, id, ids)
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.set_contractors", id, err)
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetWorkers 整体替换项目工人
func (s *projectService) SetWorkers(ctx context.Context, id string, ids []string) (*dto.ProjectDetailResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Project.GetByID(ctx, id); err != nil {
			return storageErr(err, ErrProjectNotFound)
		}
		found, err := tx.Worker.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return ErrAssociationTargetGone.WithField("ids", "exists")
		}
		return tx.Project.ReplaceWorkers(ctx, id, ids)
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.set_workers", id, err)
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Client payments ──────────────────────

func (s *projectService) AddPayment(ctx context.Context, id string, req *dto.CreateProjectPaymentRequest, callerID string) (*dto.ProjectPaymentResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	amount, err := requirePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	paidAt, err := parseDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Project.GetByID(ctx, id); err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}

	pay := &model.ProjectPayment{
		ProjectID: id,
		Amount:    amount,
		PaidAt:    paidAt,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	pay.Audit(callerID)
	if err := s.repo.Project.CreatePayment(ctx, pay); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.add_payment", id, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	resp := toProjectPaymentResponse(pay)
	return &resp, nil
}

func (s *projectService) DeletePayment(ctx context.Context, id, paymentID string) error {
	if err := requireID(id, ErrProjectPaymentNotFound); err != nil {
		return err
	}
	if err := requireID(paymentID, ErrProjectPaymentNotFound); err != nil {
		return err
	}
	pay, err := s.repo.Project.GetPayment(ctx, paymentID)
	if err != nil {
		return storageErr(err, ErrProjectPaymentNotFound)
	}
	if pay.ProjectID != id {
		return ErrProjectPaymentNotFound
	}
	if err := s.repo.Project.DeletePayment(ctx, paymentID); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.delete_payment", paymentID, err)
		return err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}

// ────────────────────── Summary ──────────────────────

// Summary 项目财务汇总：应收 = 预算 - 已回款；结余 = 已回款 - (科目付款 + 一般支出)
func (s *projectService) Summary(ctx context.Context, id string) (*dto.ProjectSummaryResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	p, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}
	totals, err := s.repo.Project.Totals(ctx, id)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.summary", id, err)
		return nil, err
	}
	concepts, err := s.repo.Concept.ListByProject(ctx, id)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "project.summary", id, err)
		return nil, err
	}
	budgeted := model.SumAmounts()
	for _, c := range concepts {
		budgeted = budgeted.Add(c.BudgetedAmount)
	}
	totalSpent := totals.ConceptSpent.Add(totals.Expenses)
	return &dto.ProjectSummaryResponse{
		ProjectID:       id,
		Budget:          p.Budget,
		ClientPaid:      totals.ClientPaid,
		Receivable:      p.Budget.Sub(totals.ClientPaid),
		ConceptBudgeted: budgeted,
		ConceptSpent:    totals.ConceptSpent,
		Expenses:        totals.Expenses,
		TotalSpent:      totalSpent,
		Balance:         totals.ClientPaid.Sub(totalSpent),
	}, nil
}

// ── 内部辅助方法 ──

// parseOptionalEnd 解析可选结束日期并校验不早于开始日期
func parseOptionalEnd(start time.Time, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	end, err := parseDate("end_date", *s)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange.WithField("end_date", "gtefield=StartDate")
	}
	return &end, nil
}

// uniqueIDs 去重并保持顺序
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:         p.ProjectID,
		Name:       p.Name,
		ClientName: p.ClientName,
		Address:    p.Address,
		Status:     p.Status,
		StartDate:  dto.FormatDate(p.StartDate),
		EndDate:    dto.FormatDatePtr(p.EndDate),
		Budget:     p.Budget,
		Notes:      p.Notes,
		Version:    p.Version,
		CreatedAt:  dto.FormatDateTime(p.CreatedAt),
		UpdatedAt:  dto.FormatDateTime(p.UpdatedAt),
	}
}

func toProjectDetailResponse(p *model.Project) *dto.ProjectDetailResponse {
	resp := &dto.ProjectDetailResponse{
		ProjectResponse: *toProjectResponse(p),
		Contractors:     make([]dto.ContractorBrief, 0, len(p.Contractors)),
		Workers:         make([]dto.WorkerBrief, 0, len(p.Workers)),
		Payments:        make([]dto.ProjectPaymentResponse, 0, len(p.Payments)),
		Concepts:        make([]dto.ConceptResponse, 0, len(p.Concepts)),
	}
	for _, c := range p.Contractors {
		resp.Contractors = append(resp.Contractors, dto.ContractorBrief{ID: c.ContractorID, Name: c.Name, Company: c.Company})
	}
	for _, w := range p.Workers {
		resp.Workers = append(resp.Workers, dto.WorkerBrief{ID: w.WorkerID, Name: w.Name, DailyRate: w.DailyRate})
	}
	for i := range p.Payments {
		resp.Payments = append(resp.Payments, toProjectPaymentResponse(&p.Payments[i]))
	}
	for i := range p.Concepts {
		resp.Concepts = append(resp.Concepts, toConceptResponse(&p.Concepts[i]))
	}
	return resp
}

func toProjectPaymentResponse(pay *model.ProjectPayment) dto.ProjectPaymentResponse {
	return dto.ProjectPaymentResponse{
		ID:        pay.ProjectPaymentID,
		ProjectID: pay.ProjectID,
		Amount:    pay.Amount,
		PaidAt:    dto.FormatDate(pay.PaidAt),
		Method:    pay.Method,
		Reference: pay.Reference,
		Notes:     pay.Notes,
	}
}
