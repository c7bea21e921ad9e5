package model

import (
	"time"

	"github.com/shopspring/decimal"

	"palmsgig.com/palmsgig/internal/constants"
)

// AuditFields is embedded in every persisted entity. The service layer sets
// both timestamps explicitly; nothing relies on ORM defaults.
type AuditFields struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AuditFields) Touch(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

// Task is a unit of paid work published by a creator. Content and economic
// fields are nullable so a draft can be persisted with only a title.
type Task struct {
	ID           string                `gorm:"primaryKey;size:36" json:"id"`
	CreatorID    string                `gorm:"size:36;not null;index" json:"creator_id"`
	Title        string                `gorm:"not null" json:"title"`
	Description  *string               `json:"description"`
	Instructions *string               `json:"instructions"`
	Platform     *constants.Platform   `gorm:"type:varchar(20)" json:"platform"`
	TaskType     *constants.TaskType   `gorm:"type:varchar(20)" json:"task_type"`

	Budget        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"budget"`
	ServiceFee    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"service_fee"`
	TotalCost     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_cost"`
	MaxPerformers *int             `json:"max_performers"`

	CurrentPerformers int                  `gorm:"not null;default:0" json:"current_performers"`
	Status            constants.TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	TargetCriteria    *string              `json:"target_criteria,omitempty"`
	ExpiresAt         *time.Time           `json:"expires_at,omitempty"`

	AuditFields

	History []TaskHistory `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// TaskHistory is an append-only record of one status transition. Rows are
// never updated and are cascade-deleted with the owning task.
type TaskHistory struct {
	ID             string               `gorm:"primaryKey;size:36" json:"id"`
	TaskID         string               `gorm:"size:36;not null;index" json:"task_id"`
	PreviousStatus constants.TaskStatus `gorm:"type:varchar(20);not null" json:"previous_status"`
	NewStatus      constants.TaskStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	ChangedBy      string               `gorm:"size:36;not null" json:"changed_by"`
	Reason         string               `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time            `gorm:"not null" json:"created_at"`
}
