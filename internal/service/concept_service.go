package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ── 预算科目模块业务错误 ──

var (
	ErrConceptNotFound        = pkgerrors.NewNotFound(30011, "预算科目不存在")
	ErrConceptPaymentNotFound = pkgerrors.NewNotFound(30012, "科目付款记录不存在")
)

// ConceptService 项目预算科目业务接口
type ConceptService interface {
	ListByProject(ctx context.Context, projectID string) ([]dto.ConceptResponse, error)
	Create(ctx context.Context, projectID string, req *dto.CreateConceptRequest, callerID string) (*dto.ConceptResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateConceptRequest, callerID string) (*dto.ConceptResponse, error)
	Delete(ctx context.Context, id string) error

	AddPayment(ctx context.Context, id string, req *dto.CreateConceptPaymentRequest, callerID string) (*dto.ConceptResponse, error)
	DeletePayment(ctx context.Context, id, paymentID string) error
}

type conceptService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewConceptService 创建 ConceptService 实例
func NewConceptService(repo *repository.Repository, cache Cache, logger *zap.Logger) ConceptService {
	return &conceptService{repo: repo, cache: cache, logger: logger}
}

func (s *conceptService) ListByProject(ctx context.Context, projectID string) ([]dto.ConceptResponse, error) {
	if err := requireID(projectID, ErrProjectNotFound); err != nil {
		return nil, err
	}
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}
	list, err := s.repo.Concept.ListByProject(ctx, projectID)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.list", projectID, err)
		return nil, err
	}
	result := make([]dto.ConceptResponse, 0, len(list))
	for i := range list {
		result = append(result, toConceptResponse(&list[i]))
	}
	return result, nil
}

func (s *conceptService) Create(ctx context.Context, projectID string, req *dto.CreateConceptRequest, callerID string) (*dto.ConceptResponse, error) {
	if err := requireID(projectID, ErrProjectNotFound); err != nil {
		return nil, err
	}
	budgeted, err := nonNegative("budgeted_amount", req.BudgetedAmount)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		return nil, storageErr(err, ErrProjectNotFound)
	}

	c := &model.Concept{
		ProjectID:      projectID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		BudgetedAmount: budgeted,
	}
	c.Audit(callerID)
	if err := s.repo.Concept.Create(ctx, c); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.create", projectID, err)
		return nil, err
	}
	resp := toConceptResponse(c)
	return &resp, nil
}

func (s *conceptService) Update(ctx context.Context, id string, req *dto.UpdateConceptRequest, callerID string) (*dto.ConceptResponse, error) {
	if err := requireID(id, ErrConceptNotFound); err != nil {
		return nil, err
	}
	c, err := s.repo.Concept.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrConceptNotFound)
	}
	if req.BudgetedAmount != nil {
		if c.BudgetedAmount, err = nonNegative("budgeted_amount", req.BudgetedAmount); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	c.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Concept.Update(ctx, c); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.update", id, err)
		return nil, err
	}
	resp := toConceptResponse(c)
	return &resp, nil
}

// Delete 删除科目及其全部付款（同一事务）
func (s *conceptService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, ErrConceptNotFound); err != nil {
		return err
	}
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Concept.GetByID(ctx, id); err != nil {
			return storageErr(err, ErrConceptNotFound)
		}
		if err := tx.Concept.DeletePaymentsByConcept(ctx, id); err != nil {
			return err
		}
		return tx.Concept.Delete(ctx, id)
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.delete", id, err)
		return err
	}
	return nil
}

// ────────────────────── Payments ──────────────────────

func (s *conceptService) AddPayment(ctx context.Context, id string, req *dto.CreateConceptPaymentRequest, callerID string) (*dto.ConceptResponse, error) {
	if err := requireID(id, ErrConceptNotFound); err != nil {
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
	c, err := s.repo.Concept.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrConceptNotFound)
	}

	pay := &model.ConceptPayment{
		ConceptID: id,
		Amount:    amount,
		PaidAt:    paidAt,
		Notes:     req.Notes,
	}
	pay.Audit(callerID)
	if err := s.repo.Concept.CreatePayment(ctx, pay); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.add_payment", id, err)
		return nil, err
	}
	c.Payments = append(c.Payments, *pay)
	invalidateDashboard(ctx, s.cache, s.logger)

	resp := toConceptResponse(c)
	return &resp, nil
}

func (s *conceptService) DeletePayment(ctx context.Context, id, paymentID string) error {
	if err := requireID(id, ErrConceptPaymentNotFound); err != nil {
		return err
	}
	if err := requireID(paymentID, ErrConceptPaymentNotFound); err != nil {
		return err
	}
	pay, err := s.repo.Concept.GetPayment(ctx, paymentID)
	if err != nil {
		return storageErr(err, ErrConceptPaymentNotFound)
	}
	if pay.ConceptID != id {
		return ErrConceptPaymentNotFound
	}
	if err := s.repo.Concept.DeletePayment(ctx, paymentID); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "concept.delete_payment", paymentID, err)
		return err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}

func toConceptResponse(c *model.Concept) dto.ConceptResponse {
	paid := c.PaidTotal()
	resp := dto.ConceptResponse{
		ID:             c.ConceptID,
		ProjectID:      c.ProjectID,
		Name:           c.Name,
		Description:    c.Description,
		BudgetedAmount: c.BudgetedAmount,
		PaidTotal:      paid,
		Remaining:      c.BudgetedAmount.Sub(paid),
		Payments:       make([]dto.ConceptPaymentResponse, 0, len(c.Payments)),
	}
	for _, p := range c.Payments {
		resp.Payments = append(resp.Payments, dto.ConceptPaymentResponse{
			ID:        p.ConceptPaymentID,
			ConceptID: p.ConceptID,
			Amount:    p.Amount,
			PaidAt:    dto.FormatDate(p.PaidAt),
			Notes:     p.Notes,
		})
	}
	return resp
}
