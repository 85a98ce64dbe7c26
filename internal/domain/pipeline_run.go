package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run statuses. Status only moves forward: running -> {completed, failed, partial}.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusPartial   = "partial"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// PipelineRun records one end-to-end execution of the content pipeline.
// Only the workflow orchestrator mutates it.
type PipelineRun struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	TriggerKind      string         `gorm:"column:trigger_kind;not null" json:"trigger_kind"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	IdeasGenerated   int            `gorm:"column:ideas_generated;not null;default:0" json:"ideas_generated"`
	ContentGenerated int            `gorm:"column:content_generated;not null;default:0" json:"content_generated"`
	ErrorSummary     datatypes.JSON `gorm:"column:error_summary;type:jsonb" json:"error_summary,omitempty"`

	StartedAt  time.Time  `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PipelineRun) TableName() string { return "pipeline_run" }
