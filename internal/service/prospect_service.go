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
	"obra-admin/backend/pkg/metrics"
)

// ── 潜在客户模块业务错误 ──

var (
	ErrProspectNotFound = pkgerrors.NewNotFound(42001, "潜在客户不存在")
	ErrProspectLost     = pkgerrors.NewConflict(42002, "已流失的潜在客户不能转化为项目")
)

// ProspectService 潜在客户业务接口（删除经由 ArchiveService 归档）
type ProspectService interface {
	Create(ctx context.Context, req *dto.CreateProspectRequest, callerID string) (*dto.ProspectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProspectResponse, error)
	List(ctx context.Context, req *dto.ProspectListRequest) ([]dto.ProspectResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProspectRequest, callerID string) (*dto.ProspectResponse, error)
	AddFollowUp(ctx context.Context, id string, req *dto.CreateFollowUpRequest, callerID string) (*dto.ProspectResponse, error)
	Convert(ctx context.Context, id string, req *dto.ConvertProspectRequest, callerID string) (*dto.ConvertProspectResponse, error)
}

type prospectService struct {
	repo    *repository.Repository
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewProspectService 创建 ProspectService 实例
func NewProspectService(repo *repository.Repository, cache Cache, m *metrics.Metrics, logger *zap.Logger) ProspectService {
	return &prospectService{repo: repo, cache: cache, metrics: m, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *prospectService) Create(ctx context.Context, req *dto.CreateProspectRequest, callerID string) (*dto.ProspectResponse, error) {
	estimated, err := nonNegative("estimated_amount", req.EstimatedAmount)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.ProspectStatusNew
	}

	p := &model.Prospect{
		Name:            strings.TrimSpace(req.Name),
		ClientName:      strings.TrimSpace(req.ClientName),
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		Address:         req.Address,
		EstimatedAmount: estimated,
		Status:          status,
		Notes:           req.Notes,
	}
	p.Audit(callerID)
	if err := s.repo.Prospect.Create(ctx, p); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "prospect.create", p.Name, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProspectResponse(p), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *prospectService) GetByID(ctx context.Context, id string) (*dto.ProspectResponse, error) {
	if err := requireID(id, ErrProspectNotFound); err != nil {
		return nil, err
	}
	p, err := s.repo.Prospect.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProspectNotFound)
	}
	return toProspectResponse(p), nil
}

func (s *prospectService) List(ctx context.Context, req *dto.ProspectListRequest) ([]dto.ProspectResponse, int64, error) {
	list, total, err := s.repo.Prospect.List(ctx, repository.ProspectFilter{
		Query:  req.Q,
		Status: req.Status,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "prospect.list", "", err)
		return nil, 0, err
	}
	result := make([]dto.ProspectResponse, 0, len(list))
	for i := range list {
		result = append(result, *toProspectResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *prospectService) Update(ctx context.Context, id string, req *dto.UpdateProspectRequest, callerID string) (*dto.ProspectResponse, error) {
	if err := requireID(id, ErrProspectNotFound); err != nil {
		return nil, err
	}
	p, err := s.repo.Prospect.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProspectNotFound)
	}
	if req.EstimatedAmount != nil {
		if p.EstimatedAmount, err = nonNegative("estimated_amount", req.EstimatedAmount); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClientName != nil {
		p.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.ContactPhone != nil {
		p.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		p.ContactEmail = *req.ContactEmail
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

	if err := s.repo.Prospect.Update(ctx, p); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "prospect.update", id, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProspectResponse(p), nil
}

// ────────────────────── AddFollowUp ──────────────────────

func (s *prospectService) AddFollowUp(ctx context.Context, id string, req *dto.CreateFollowUpRequest, callerID string) (*dto.ProspectResponse, error) {
	if err := requireID(id, ErrProspectNotFound); err != nil {
		return nil, err
	}
	happened := model.DateOnly(s.now())
	if req.HappenedAt != "" {
		var err error
		if happened, err = parseDate("happened_at", req.HappenedAt); err != nil {
			return nil, err
		}
	}
	p, err := s.repo.Prospect.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrProspectNotFound)
	}

	f := &model.ProspectFollowUp{
		ProspectID: id,
		Note:       strings.TrimSpace(req.Note),
		HappenedAt: happened,
	}
	f.Audit(callerID)
	if err := s.repo.Prospect.CreateFollowUp(ctx, f); err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "prospect.add_follow_up", id, err)
		return nil, err
	}
	p.FollowUps = append(p.FollowUps, *f)
	return toProspectResponse(p), nil
}

// ────────────────────── Convert ──────────────────────

// Convert 在单个事务内由潜在客户创建项目，并以 converted 原因归档潜在客户
func (s *prospectService) Convert(ctx context.Context, id string, req *dto.ConvertProspectRequest, callerID string) (*dto.ConvertProspectResponse, error) {
	if err := requireID(id, ErrProspectNotFound); err != nil {
		return nil, err
	}
	start := model.DateOnly(s.now())
	if req.StartDate != nil {
		var err error
		if start, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}

	var resp *dto.ConvertProspectResponse
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		prospect, err := tx.Prospect.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, ErrProspectNotFound)
		}
		if prospect.Status == model.ProspectStatusLost {
			return ErrProspectLost
		}

		budget := prospect.EstimatedAmount
		if req.Budget != nil {
			if budget, err = nonNegative("budget", req.Budget); err != nil {
				return err
			}
		}
		status := model.ProjectStatusPlanning
		if req.Status != nil {
			status = *req.Status
		}

		project := &model.Project{
			Name:       prospect.Name,
			ClientName: prospect.ClientName,
			Address:    prospect.Address,
			Status:     status,
			StartDate:  start,
			Budget:     budget,
			Notes:      prospect.Notes,
		}
		project.Version = 1
		project.Audit(callerID)
		if err := tx.Project.Create(ctx, project); err != nil {
			return err
		}

		prospect.Status = model.ProspectStatusWon
		history, err := archiveProspectTx(ctx, tx, prospect, model.ArchiveReasonConverted, &project.ProjectID, callerID, s.now())
		if err != nil {
			return err
		}
		resp = &dto.ConvertProspectResponse{
			Project:   *toProjectResponse(project),
			HistoryID: history.HistoryID,
		}
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "prospect.convert", id, err)
		return nil, err
	}

	s.metrics.IncArchive("prospect", model.ArchiveReasonConverted)
	s.logger.Info("潜在客户已转化为项目",
		zap.String("prospect_id", id),
		zap.String("project_id", resp.Project.ID),
	)
	invalidateDashboard(ctx, s.cache, s.logger)
	return resp, nil
}

func toProspectResponse(p *model.Prospect) *dto.ProspectResponse {
	resp := &dto.ProspectResponse{
		ID:              p.ProspectID,
		Name:            p.Name,
		ClientName:      p.ClientName,
		ContactPhone:    p.ContactPhone,
		ContactEmail:    p.ContactEmail,
		Address:         p.Address,
		EstimatedAmount: p.EstimatedAmount,
		Status:          p.Status,
		Notes:           p.Notes,
		CreatedAt:       dto.FormatDateTime(p.CreatedAt),
		UpdatedAt:       dto.FormatDateTime(p.UpdatedAt),
	}
	for _, f := range p.FollowUps {
		resp.FollowUps = append(resp.FollowUps, dto.FollowUpResponse{
			ID:         f.FollowUpID,
			ProspectID: f.ProspectID,
			Note:       f.Note,
			HappenedAt: dto.FormatDate(f.HappenedAt),
		})
	}
	return resp
}
