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

// ── 目录模块业务错误 ──

var (
	ErrSpecialtyNotFound  = pkgerrors.NewNotFound(40001, "工种不存在")
	ErrSpecialtyNameTaken = pkgerrors.NewConflict(40002, "工种名称已存在")
	ErrSpecialtyInUse     = pkgerrors.NewConflict(40003, "工种仍被在册工人或承包商使用，无法删除")
	ErrContractorNotFound = pkgerrors.NewNotFound(40011, "承包商不存在")
	ErrWorkerNotFound     = pkgerrors.NewNotFound(40021, "工人不存在")
)

// SpecialtyService 工种业务接口
type SpecialtyService interface {
	Create(ctx context.Context, req *dto.CreateSpecialtyRequest, callerID string) (*dto.SpecialtyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SpecialtyResponse, error)
	List(ctx context.Context, query string) ([]dto.SpecialtyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSpecialtyRequest, callerID string) (*dto.SpecialtyResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type specialtyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSpecialtyService 创建 SpecialtyService 实例
func NewSpecialtyService(repo *repository.Repository, logger *zap.Logger) SpecialtyService {
	return &specialtyService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *specialtyService) Create(ctx context.Context, req *dto.CreateSpecialtyRequest, callerID string) (*dto.SpecialtyResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	sp := &model.Specialty{Name: name, Description: req.Description}
	sp.Audit(callerID)
	if err := s.repo.Specialty.Create(ctx, sp); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSpecialtyNameTaken
		}
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "specialty.create", name, err)
		return nil, err
	}
	return toSpecialtyResponse(sp), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *specialtyService) GetByID(ctx context.Context, id string) (*dto.SpecialtyResponse, error) {
	if err := requireID(id, ErrSpecialtyNotFound); err != nil {
		return nil, err
	}
	sp, err := s.repo.Specialty.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrSpecialtyNotFound)
	}
	return toSpecialtyResponse(sp), nil
}

func (s *specialtyService) List(ctx context.Context, query string) ([]dto.SpecialtyResponse, error) {
	list, err := s.repo.Specialty.List(ctx, query)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "specialty.list", "", err)
		return nil, err
	}
	result := make([]dto.SpecialtyResponse, 0, len(list))
	for i := range list {
		result = append(result, *toSpecialtyResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *specialtyService) Update(ctx context.Context, id string, req *dto.UpdateSpecialtyRequest, callerID string) (*dto.SpecialtyResponse, error) {
	if err := requireID(id, ErrSpecialtyNotFound); err != nil {
		return nil, err
	}
	sp, err := s.repo.Specialty.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrSpecialtyNotFound)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, sp.Name) {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
		sp.Name = name
	}
	if req.Description != nil {
		sp.Description = *req.Description
	}
	sp.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Specialty.Update(ctx, sp); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSpecialtyNameTaken
		}
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "specialty.update", id, err)
		return nil, err
	}
	return toSpecialtyResponse(sp), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除工种；仍有在册工人或承包商引用时拒绝
func (s *specialtyService) Delete(ctx context.Context, id string, callerID string) error {
	if err := requireID(id, ErrSpecialtyNotFound); err != nil {
		return err
	}
	if _, err := s.repo.Specialty.GetByID(ctx, id); err != nil {
		return storageErr(err, ErrSpecialtyNotFound)
	}
	used, err := s.repo.Specialty.CountUsage(ctx, id)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "specialty.delete", id, err)
		return err
	}
	if used > 0 {
		return ErrSpecialtyInUse
	}
	if err := s.repo.Specialty.Delete(ctx, id, callerID); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "specialty.delete", id, err)
		return err
	}
	s.logger.Info("工种已删除", zap.String("specialty_id", id), zap.String("by", callerID))
	return nil
}

func (s *specialtyService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.Specialty.GetByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return pkgerrors.Storage(err)
	}
	if existing.SpecialtyID != selfID {
		return ErrSpecialtyNameTaken.WithField("name", "unique")
	}
	return nil
}

// ── Contractor ──

// ContractorService 承包商业务接口
type ContractorService interface {
	Create(ctx context.Context, req *dto.CreateContractorRequest, callerID string) (*dto.ContractorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ContractorResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.ContractorResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateContractorRequest, callerID string) (*dto.ContractorResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type contractorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContractorService 创建 ContractorService 实例
func NewContractorService(repo *repository.Repository, logger *zap.Logger) ContractorService {
	return &contractorService{repo: repo, logger: logger}
}

func (s *contractorService) Create(ctx context.Context, req *dto.CreateContractorRequest, callerID string) (*dto.ContractorResponse, error) {
	specialty, err := resolveSpecialty(ctx, s.repo, req.SpecialtyID)
	if err != nil {
		return nil, err
	}

	c := &model.Contractor{
		Name:        strings.TrimSpace(req.Name),
		Company:     req.Company,
		Phone:       req.Phone,
		Email:       req.Email,
		SpecialtyID: req.SpecialtyID,
		Notes:       req.Notes,
		IsActive:    true,
	}
	c.Audit(callerID)
	if err := s.repo.Contractor.Create(ctx, c); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "contractor.create", c.Name, err)
		return nil, err
	}
	c.Specialty = specialty
	return toContractorResponse(c), nil
}

func (s *contractorService) GetByID(ctx context.Context, id string) (*dto.ContractorResponse, error) {
	if err := requireID(id, ErrContractorNotFound); err != nil {
		return nil, err
	}
	c, err := s.repo.Contractor.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrContractorNotFound)
	}
	return toContractorResponse(c), nil
}

func (s *contractorService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.ContractorResponse, int64, error) {
	list, total, err := s.repo.Contractor.List(ctx, repository.ListFilter{
		Query:      req.Q,
		ActiveOnly: req.ActiveOnly,
		Offset:     req.GetOffset(),
		Limit:      req.GetPageSize(),
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "contractor.list", "", err)
		return nil, 0, err
	}
	result := make([]dto.ContractorResponse, 0, len(list))
	for i := range list {
		result = append(result, *toContractorResponse(&list[i]))
	}
	return result, total, nil
}

func (s *contractorService) Update(ctx context.Context, id string, req *dto.UpdateContractorRequest, callerID string) (*dto.ContractorResponse, error) {
	if err := requireID(id, ErrContractorNotFound); err != nil {
		return nil, err
	}
	c, err := s.repo.Contractor.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrContractorNotFound)
	}

	if req.SpecialtyID != nil {
		specialtyID, err := optionalID("specialty_id", *req.SpecialtyID)
		if err != nil {
			return nil, err
		}
		if c.Specialty, err = resolveSpecialty(ctx, s.repo, specialtyID); err != nil {
			return nil, err
		}
		c.SpecialtyID = specialtyID
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	c.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Contractor.Update(ctx, c); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "contractor.update", id, err)
		return nil, err
	}
	return toContractorResponse(c), nil
}

// Delete 软删除承包商；项目中的关联保留，便于历史查看
func (s *contractorService) Delete(ctx context.Context, id string, callerID string) error {
	if err := requireID(id, ErrContractorNotFound); err != nil {
		return err
	}
	if _, err := s.repo.Contractor.GetByID(ctx, id); err != nil {
		return storageErr(err, ErrContractorNotFound)
	}
	if err := s.repo.Contractor.Delete(ctx, id, callerID); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "contractor.delete", id, err)
		return err
	}
	return nil
}

// ── Worker ──

// WorkerService 工人业务接口
type WorkerService interface {
	Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WorkerResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.WorkerResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type workerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkerService 创建 WorkerService 实例
func NewWorkerService(repo *repository.Repository, logger *zap.Logger) WorkerService {
	return &workerService{repo: repo, logger: logger}
}

func (s *workerService) Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	rate, err := nonNegative("daily_rate", req.DailyRate)
	if err != nil {
		return nil, err
	}
	specialty, err := resolveSpecialty(ctx, s.repo, req.SpecialtyID)
	if err != nil {
		return nil, err
	}

	w := &model.Worker{
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		SpecialtyID: req.SpecialtyID,
		DailyRate:   rate,
		IsActive:    true,
	}
	w.Audit(callerID)
	if err := s.repo.Worker.Create(ctx, w); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "worker.create", w.Name, err)
		return nil, err
	}
	w.Specialty = specialty
	return toWorkerResponse(w), nil
}

func (s *workerService) GetByID(ctx context.Context, id string) (*dto.WorkerResponse, error) {
	if err := requireID(id, ErrWorkerNotFound); err != nil {
		return nil, err
	}
	w, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrWorkerNotFound)
	}
	return toWorkerResponse(w), nil
}

func (s *workerService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.WorkerResponse, int64, error) {
	list, total, err := s.repo.Worker.List(ctx, repository.ListFilter{
		Query:      req.Q,
		ActiveOnly: req.ActiveOnly,
		Offset:     req.GetOffset(),
		Limit:      req.GetPageSize(),
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "worker.list", "", err)
		return nil, 0, err
	}
	result := make([]dto.WorkerResponse, 0, len(list))
	for i := range list {
		result = append(result, *toWorkerResponse(&list[i]))
	}
	return result, total, nil
}

func (s *workerService) Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	if err := requireID(id, ErrWorkerNotFound); err != nil {
		return nil, err
	}
	w, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrWorkerNotFound)
	}

	if req.DailyRate != nil {
		if w.DailyRate, err = nonNegative("daily_rate", req.DailyRate); err != nil {
			return nil, err
		}
	}
	if req.SpecialtyID != nil {
		specialtyID, err := optionalID("specialty_id", *req.SpecialtyID)
		if err != nil {
			return nil, err
		}
		if w.Specialty, err = resolveSpecialty(ctx, s.repo, specialtyID); err != nil {
			return nil, err
		}
		w.SpecialtyID = specialtyID
	}
	if req.Name != nil {
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		w.Phone = *req.Phone
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	w.UpdatedBy = auditPtr(callerID)

	if err := s.repo.Worker.Update(ctx, w); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "worker.update", id, err)
		return nil, err
	}
	return toWorkerResponse(w), nil
}

// Delete 软删除工人；既有工资发放保留 worker_id 与收款人姓名
func (s *workerService) Delete(ctx context.Context, id string, callerID string) error {
	if err := requireID(id, ErrWorkerNotFound); err != nil {
		return err
	}
	if _, err := s.repo.Worker.GetByID(ctx, id); err != nil {
		return storageErr(err, ErrWorkerNotFound)
	}
	if err := s.repo.Worker.Delete(ctx, id, callerID); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "worker.delete", id, err)
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// resolveSpecialty 校验可选工种引用
func resolveSpecialty(ctx context.Context, repo *repository.Repository, id *string) (*model.Specialty, error) {
	if id == nil {
		return nil, nil
	}
	sp, err := repo.Specialty.GetByID(ctx, *id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSpecialtyNotFound.WithField("specialty_id", "exists")
		}
		return nil, pkgerrors.Storage(err)
	}
	return sp, nil
}

func toSpecialtyResponse(sp *model.Specialty) *dto.SpecialtyResponse {
	return &dto.SpecialtyResponse{
		ID:          sp.SpecialtyID,
		Name:        sp.Name,
		Description: sp.Description,
		CreatedAt:   dto.FormatDateTime(sp.CreatedAt),
		UpdatedAt:   dto.FormatDateTime(sp.UpdatedAt),
	}
}

func toSpecialtyBrief(sp *model.Specialty) *dto.SpecialtyBrief {
	if sp == nil {
		return nil
	}
	return &dto.SpecialtyBrief{ID: sp.SpecialtyID, Name: sp.Name}
}

func toContractorResponse(c *model.Contractor) *dto.ContractorResponse {
	return &dto.ContractorResponse{
		ID:        c.ContractorID,
		Name:      c.Name,
		Company:   c.Company,
		Phone:     c.Phone,
		Email:     c.Email,
		Specialty: toSpecialtyBrief(c.Specialty),
		Notes:     c.Notes,
		IsActive:  c.IsActive,
		CreatedAt: dto.FormatDateTime(c.CreatedAt),
		UpdatedAt: dto.FormatDateTime(c.UpdatedAt),
	}
}

func toWorkerResponse(w *model.Worker) *dto.WorkerResponse {
	return &dto.WorkerResponse{
		ID:        w.WorkerID,
		Name:      w.Name,
		Phone:     w.Phone,
		Specialty: toSpecialtyBrief(w.Specialty),
		DailyRate: w.DailyRate,
		IsActive:  w.IsActive,
		CreatedAt: dto.FormatDateTime(w.CreatedAt),
		UpdatedAt: dto.FormatDateTime(w.UpdatedAt),
	}
}
