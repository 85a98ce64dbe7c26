package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoreIdea is the unit thesis a generation run derives platform content from.
// Rows are immutable after creation; the pipeline never deletes them.
type CoreIdea struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RunID         uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	TopicCategory string    `gorm:"column:topic_category;not null;index" json:"topic_category"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CoreIdea) TableName() string { return "core_idea" }
