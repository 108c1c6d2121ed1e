package dto

import "obra-admin/backend/internal/model"

// ── 历史归档模块 DTO ──

// HistoryListRequest 历史记录列表查询参数
type HistoryListRequest struct {
	Q      string `form:"q"      binding:"omitempty,max=100"`
	Reason string `form:"reason" binding:"omitempty,oneof=deleted converted"`
	PaginationRequest
}

// ProjectHistoryResponse 项目历史记录响应（列表不含快照）
type ProjectHistoryResponse struct {
	ID                string                 `json:"id"`
	OriginalProjectID string                 `json:"original_project_id"`
	Name              string                 `json:"name"`
	ArchivedAt        string                 `json:"archived_at"`
	ArchivedBy        *string                `json:"archived_by,omitempty"`
	Snapshot          *model.ProjectSnapshot `json:"snapshot,omitempty"`
}

// ProspectHistoryResponse 潜在客户历史记录响应
type ProspectHistoryResponse struct {
	ID                 string                  `json:"id"`
	OriginalProspectID string                  `json:"original_prospect_id"`
	Name               string                  `json:"name"`
	Reason             string                  `json:"reason"`
	ConvertedProjectID *string                 `json:"converted_project_id,omitempty"`
	ArchivedAt         string                  `json:"archived_at"`
	ArchivedBy         *string                 `json:"archived_by,omitempty"`
	Snapshot           *model.ProspectSnapshot `json:"snapshot,omitempty"`
}
