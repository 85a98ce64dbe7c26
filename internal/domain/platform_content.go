package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lifecycle states for PlatformContent.
const (
	ContentStateGenerated = "generated"
	ContentStateReviewed  = "reviewed"
	ContentStateEdited    = "edited"
	ContentStateReady     = "ready"
	ContentStatePublished = "published"
)

// Platform tags. New platforms register a transformer under a new tag; the
// column itself is free-form.
const (
	PlatformLinkedIn   = "linkedin"
	PlatformTwitter    = "twitter"
	PlatformShortVideo = "short_video"
)

// PlatformContent is one platform-specific rendering of a CoreIdea.
// OriginalBody is written once at creation and never updated afterwards.
type PlatformContent struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IdeaID uuid.UUID `gorm:"type:uuid;not null;index" json:"idea_id"`
	Idea   *CoreIdea `gorm:"constraint:OnDelete:CASCADE;foreignKey:IdeaID;references:ID" json:"idea,omitempty"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Platform     string         `gorm:"column:platform;not null;index" json:"platform"`
	State        string         `gorm:"column:state;not null;default:'generated';index" json:"state"`
	Body         string         `gorm:"column:body;type:text;not null" json:"body"`
	OriginalBody string         `gorm:"column:original_body;type:text;not null" json:"original_body"`
	EditedBody   string         `gorm:"column:edited_body;type:text" json:"edited_body,omitempty"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlatformContent) TableName() string { return "platform_content" }
