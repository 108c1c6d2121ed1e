package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
	"obra-admin/backend/pkg/metrics"
)

// ── 历史归档模块业务错误 ──

var (
	ErrHistoryNotFound = pkgerrors.NewNotFound(43001, "历史记录不存在")
)

// ArchiveService 历史归档业务接口
//
// 项目与潜在客户的删除一律先写入快照再删除实体，全部在同一事务内完成。
type ArchiveService interface {
	ArchiveProject(ctx context.Context, id string, callerID string) (*dto.ProjectHistoryResponse, error)
	ArchiveProspect(ctx context.Context, id string, callerID string) (*dto.ProspectHistoryResponse, error)

	ListProjectHistory(ctx context.Context, req *dto.HistoryListRequest) ([]dto.ProjectHistoryResponse, int64, error)
	GetProjectHistory(ctx context.Context, id string) (*dto.ProjectHistoryResponse, error)
	ListProspectHistory(ctx context.Context, req *dto.HistoryListRequest) ([]dto.ProspectHistoryResponse, int64, error)
	GetProspectHistory(ctx context.Context, id string) (*dto.ProspectHistoryResponse, error)
}

type archiveService struct {
	repo    *repository.Repository
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewArchiveService 创建 ArchiveService 实例
func NewArchiveService(repo *repository.Repository, cache Cache, m *metrics.Metrics, logger *zap.Logger) ArchiveService {
	return &archiveService{repo: repo, cache: cache, metrics: m, logger: logger, now: time.Now}
}

// ────────────────────── ArchiveProject ──────────────────────

func (s *archiveService) ArchiveProject(ctx context.Context, id string, callerID string) (*dto.ProjectHistoryResponse, error) {
	if err := requireID(id, ErrProjectNotFound); err != nil {
		return nil, err
	}
	var history *model.ProjectHistory
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Project.GetWithRelations(ctx, id)
		if err != nil {
			return storageErr(err, ErrProjectNotFound)
		}
		history, err = archiveProjectTx(ctx, tx, p, callerID, s.now())
		return err
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "archive.project", id, err)
		return nil, err
	}

	s.metrics.IncArchive("project", model.ArchiveReasonDeleted)
	s.logger.Info("项目已归档",
		zap.String("project_id", id),
		zap.String("history_id", history.HistoryID),
		zap.String("by", callerID),
	)
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProjectHistoryResponse(history, true), nil
}

// archiveProjectTx 写入项目快照并按依赖顺序删除：
// 科目付款 → 科目 → 客户回款 → 项目支出 → 承包商/工人关联 → 目录项目关联 → 项目
func archiveProjectTx(ctx context.Context, tx *repository.Repository, p *model.Project, callerID string, now time.Time) (*model.ProjectHistory, error) {
	snap := model.NewProjectSnapshot(p)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("项目快照校验失败: %w", err)
	}
	history := &model.ProjectHistory{
		OriginalProjectID: p.ProjectID,
		Name:              p.Name,
		ArchivedAt:        now.UTC(),
		ArchivedBy:        auditPtr(callerID),
		Snapshot:          snap,
	}
	if err := tx.History.CreateProject(ctx, history); err != nil {
		return nil, err
	}

	steps := []func(context.Context, string) error{
		tx.Concept.DeletePaymentsByProject,
		tx.Concept.DeleteByProject,
		tx.Project.DeletePaymentsByProject,
		tx.Expense.DeleteByProject,
		tx.Project.DeleteAssociations,
		tx.Folder.ClearProjectLink,
		tx.Project.Delete,
	}
	for _, step := range steps {
		if err := step(ctx, p.ProjectID); err != nil {
			return nil, err
		}
	}
	return history, nil
}

// ────────────────────── ArchiveProspect ──────────────────────

func (s *archiveService) ArchiveProspect(ctx context.Context, id string, callerID string) (*dto.ProspectHistoryResponse, error) {
	if err := requireID(id, ErrProspectNotFound); err != nil {
		return nil, err
	}
	var history *model.ProspectHistory
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Prospect.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, ErrProspectNotFound)
		}
		history, err = archiveProspectTx(ctx, tx, p, model.ArchiveReasonDeleted, nil, callerID, s.now())
		return err
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "archive.prospect", id, err)
		return nil, err
	}

	s.metrics.IncArchive("prospect", model.ArchiveReasonDeleted)
	s.logger.Info("潜在客户已归档", zap.String("prospect_id", id), zap.String("history_id", history.HistoryID))
	invalidateDashboard(ctx, s.cache, s.logger)
	return toProspectHistoryResponse(history, true), nil
}

// archiveProspectTx 写入潜在客户快照，删除跟进记录与潜在客户
func archiveProspectTx(ctx context.Context, tx *repository.Repository, p *model.Prospect, reason string, convertedProjectID *string, callerID string, now time.Time) (*model.ProspectHistory, error) {
	snap := model.NewProspectSnapshot(p)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("潜在客户快照校验失败: %w", err)
	}
	history := &model.ProspectHistory{
		OriginalProspectID: p.ProspectID,
		Name:               p.Name,
		Reason:             reason,
		ConvertedProjectID: convertedProjectID,
		ArchivedAt:         now.UTC(),
		ArchivedBy:         auditPtr(callerID),
		Snapshot:           snap,
	}
	if err := tx.History.CreateProspect(ctx, history); err != nil {
		return nil, err
	}
	if err := tx.Prospect.DeleteFollowUps(ctx, p.ProspectID); err != nil {
		return nil, err
	}
	if err := tx.Prospect.Delete(ctx, p.ProspectID); err != nil {
		return nil, err
	}
	return history, nil
}

// ────────────────────── History queries ──────────────────────

func (s *archiveService) ListProjectHistory(ctx context.Context, req *dto.HistoryListRequest) ([]dto.ProjectHistoryResponse, int64, error) {
	list, total, err := s.repo.History.ListProjects(ctx, req.Q, req.GetOffset(), req.GetPageSize())
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "history.list_projects", "", err)
		return nil, 0, err
	}
	result := make([]dto.ProjectHistoryResponse, 0, len(list))
	for i := range list {
		result = append(result, *toProjectHistoryResponse(&list[i], false))
	}
	return result, total, nil
}

func (s *archiveService) GetProjectHistory(ctx context.Context, id string) (*dto.ProjectHistoryResponse, error) {
	if err := requireID(id, ErrHistoryNotFound); err != nil {
		return nil, err
	}
	h, err := s.repo.History.GetProject(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrHistoryNotFound)
	}
	return toProjectHistoryResponse(h, true), nil
}

func (s *archiveService) ListProspectHistory(ctx context.Context, req *dto.HistoryListRequest) ([]dto.ProspectHistoryResponse, int64, error) {
	list, total, err := s.repo.History.ListProspects(ctx, req.Q, req.Reason, req.GetOffset(), req.GetPageSize())
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "history.list_prospects", "", err)
		return nil, 0, err
	}
	result := make([]dto.ProspectHistoryResponse, 0, len(list))
	for i := range list {
		result = append(result, *toProspectHistoryResponse(&list[i], false))
	}
	return result, total, nil
}

func (s *archiveService) GetProspectHistory(ctx context.Context, id string) (*dto.ProspectHistoryResponse, error) {
	if err := requireID(id, ErrHistoryNotFound); err != nil {
		return nil, err
	}
	h, err := s.repo.History.GetProspect(ctx, id)
	if err != nil {
		return nil, storageErr(err, ErrHistoryNotFound)
	}
	return toProspectHistoryResponse(h, true), nil
}

func toProjectHistoryResponse(h *model.ProjectHistory, withSnapshot bool) *dto.ProjectHistoryResponse {
	resp := &dto.ProjectHistoryResponse{
		ID:                h.HistoryID,
		OriginalProjectID: h.OriginalProjectID,
		Name:              h.Name,
		ArchivedAt:        dto.FormatDateTime(h.ArchivedAt),
		ArchivedBy:        h.ArchivedBy,
	}
	if withSnapshot {
		snap := h.Snapshot
		resp.Snapshot = &snap
	}
	return resp
}

func toProspectHistoryResponse(h *model.ProspectHistory, withSnapshot bool) *dto.ProspectHistoryResponse {
	resp := &dto.ProspectHistoryResponse{
		ID:                 h.HistoryID,
		OriginalProspectID: h.OriginalProspectID,
		Name:               h.Name,
		Reason:             h.Reason,
		ConvertedProjectID: h.ConvertedProjectID,
		ArchivedAt:         dto.FormatDateTime(h.ArchivedAt),
		ArchivedBy:         h.ArchivedBy,
	}
	if withSnapshot {
		snap := h.Snapshot
		resp.Snapshot = &snap
	}
	return resp
}
