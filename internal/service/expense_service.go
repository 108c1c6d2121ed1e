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

// ── 支出模块业务错误 ──

var (
	ErrExpenseNotFound = pkgerrors.NewNotFound(41001, "支出记录不存在")
	ErrExpenseReadOnly = pkgerrors.NewConflict(41002, "工资自动记账的支出为只读，请在工资模块中修改")
)

// ExpenseService 一般支出业务接口
type ExpenseService interface {
	Create(ctx context.Context, req *dto.CreateExpenseRequest, callerID string) (*dto.ExpenseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ExpenseResponse, error)
	List(ctx context.Context, req *dto.ExpenseListRequest) ([]dto.ExpenseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateExpenseRequest, callerID string) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id string) error
}

type expenseService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewExpenseService 创建 ExpenseService 实例
func NewExpenseService(repo *repository.Repository, cache Cache, logger *zap.Logger) ExpenseService {
	return &expenseService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *expenseService) Create(ctx context.Context, req *dto.CreateExpenseRequest, callerID string) (*dto.ExpenseResponse, error) {
	amount, err := requirePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	spentAt, err := parseDate("spent_at", req.SpentAt)
	if err != nil {
		return nil, err
	}
	project, err := s.resolveProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	e := &model.Expense{
		ProjectID:   req.ProjectID,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Amount:      amount,
		SpentAt:     spentAt,
		Source:      model.ExpenseSourceManual,
	}
	e.Audit(callerID)
	if err := s.repo.Expense.Create(ctx, e); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "expense.create", e.Category, err)
		return nil, err
	}
	e.Project = project
	invalidateDashboard(ctx, s.cache, s.logger)
	return toExpenseResponse(e), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *expenseService) GetByID(ctx context.Context, id string) (*dto.ExpenseResponse, error) {
	if err := requireID(id, ErrExpenseNotFound); err != nil {
		return nil, err
	}
	e, err := s.repo.Expense.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrExpenseNotFound)
	}
	return toExpenseResponse(e), nil
}

func (s *expenseService) List(ctx context.Context, req *dto.ExpenseListRequest) ([]dto.ExpenseResponse, int64, error) {
	f := repository.ExpenseFilter{
		ProjectID: req.ProjectID,
		Category:  req.Category,
		Source:    req.Source,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	}
	var err error
	if f.From, err = optionalDate("from", req.From); err != nil {
		return nil, 0, err
	}
	if f.To, err = optionalDate("to", req.To); err != nil {
		return nil, 0, err
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, ErrInvalidDateRange.WithField("to", "gtefield=From")
	}

	list, total, err := s.repo.Expense.List(ctx, f)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "expense.list", "", err)
		return nil, 0, err
	}
	result := make([]dto.ExpenseResponse, 0, len(list))
	for i := range list {
		result = append(result, *toExpenseResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *expenseService) Update(ctx context.Context, id string, req *dto.UpdateExpenseRequest, callerID string) (*dto.ExpenseResponse, error) {
	e, err := s.loadWritable(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if e.Amount, err = requirePositive("amount", req.Amount); err != nil {
			return nil, err
		}
	}
	if req.SpentAt != nil {
		if e.SpentAt, err = parseDate("spent_at", *req.SpentAt); err != nil {
			return nil, err
		}
	}
	if req.ProjectID != nil {
		projectID, err := optionalID("project_id", *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if e.Project, err = s.resolveProject(ctx, projectID); err != nil {
			return nil, err
		}
		e.ProjectID = projectID
	}
	if req.Category != nil {
		e.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	e.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Expense.Update(ctx, e); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "expense.update", id, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return toExpenseResponse(e), nil
}

func (s *expenseService) Delete(ctx context.Context, id string) error {
	if _, err := s.loadWritable(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Expense.Delete(ctx, id); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "expense.delete", id, err)
		return err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}

// ── 内部辅助方法 ──

// loadWritable 加载支出并拒绝修改工资自动记账的记录
func (s *expenseService) loadWritable(ctx context.Context, id string) (*model.Expense, error) {
	if err := requireID(id, ErrExpenseNotFound); err != nil {
		return nil, err
	}
	e, err := s.repo.Expense.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrExpenseNotFound)
	}
	if e.IsReadOnly() {
		return nil, ErrExpenseReadOnly
	}
	return e, nil
}

func (s *expenseService) resolveProject(ctx context.Context, id *string) (*model.Project, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.repo.Project.GetByID(ctx, *id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound.WithField("project_id", "exists")
		}
		return nil, pkgerrors.Storage(err)
	}
	return p, nil
}

// optionalDate 解析可选日期查询参数
func optionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toExpenseResponse(e *model.Expense) *dto.ExpenseResponse {
	resp := &dto.ExpenseResponse{
		ID:               e.ExpenseID,
		ProjectID:        e.ProjectID,
		Category:         e.Category,
		Description:      e.Description,
		Amount:           e.Amount,
		SpentAt:          dto.FormatDate(e.SpentAt),
		Source:           e.Source,
		PayrollPaymentID: e.PayrollPaymentID,
		CreatedAt:        dto.FormatDateTime(e.CreatedAt),
	}
	if e.Project != nil {
		resp.ProjectName = e.Project.Name
	}
	return resp
}
