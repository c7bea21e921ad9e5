package dto

import (
	"time"

	"github.com/shopspring/decimal"

	model "palmsgig.com/palmsgig/internal/models"
)

type CreateTaskRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Instructions   string          `json:"instructions"`
	Platform       string          `json:"platform"`
	TaskType       string          `json:"task_type"`
	Budget         decimal.Decimal `json:"budget"`
	MaxPerformers  int             `json:"max_performers"`
	TargetCriteria *string         `json:"target_criteria,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
}

// CreateDraftRequest requires only a title; everything else may stay unset
// until publish.
type CreateDraftRequest struct {
	Title          string           `json:"title"`
	Description    *string          `json:"description,omitempty"`
	Instructions   *string          `json:"instructions,omitempty"`
	Platform       *string          `json:"platform,omitempty"`
	TaskType       *string          `json:"task_type,omitempty"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	MaxPerformers  *int             `json:"max_performers,omitempty"`
	TargetCriteria *string          `json:"target_criteria,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// PublishTaskRequest supplies any fields the draft is still missing. Field
// completeness is enforced by the service after ownership and status checks.
type PublishTaskRequest struct {
	Title          string           `json:"title,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Instructions   *string          `json:"instructions,omitempty"`
	Platform       *string          `json:"platform,omitempty"`
	TaskType       *string          `json:"task_type,omitempty"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	MaxPerformers  *int             `json:"max_performers,omitempty"`
	TargetCriteria *string          `json:"target_criteria,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

type UpdateTaskRequest struct {
	Title          *string          `json:"title,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Instructions   *string          `json:"instructions,omitempty"`
	Platform       *string          `json:"platform,omitempty"`
	TaskType       *string          `json:"task_type,omitempty"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	MaxPerformers  *int             `json:"max_performers,omitempty"`
	TargetCriteria *string          `json:"target_criteria,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	Status         *string          `json:"status,omitempty"`
}

type TaskListResponse struct {
	Tasks      []model.Task `json:"tasks"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
