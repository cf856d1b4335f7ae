package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the submission workflow. The column is free
// form so collaborators can introduce further types without a migration.
const (
	NotificationTypeDocumentAssigned = "document_assigned"
	NotificationTypeDocumentReviewed = "document_reviewed"
)

// Notification represents an in-app notification for an identity.
//
// IsRead is owned by the read-receipt surface; the retention sweeper only
// ever deletes notifications that are both read and older than the window.
type Notification struct {
	BaseModel

	RecipientID string         `gorm:"type:uuid;index;not null" json:"recipient_id"`
	Type        string         `gorm:"type:varchar(64);not null" json:"type"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Message     string         `gorm:"type:text" json:"message"`
	ActionURL   string         `gorm:"type:text" json:"action_url"`
	Data        datatypes.JSON `json:"data"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
