package models

import "time"

// Submission statuses. Status only has two values today; reviewers move a
// submission from pending to done when the review is finished.
const (
	SubmissionStatusPending = "pending"
	SubmissionStatusDone    = "done"
)

// Submission represents one uploaded document under review.
//
// The upload metadata columns (FileName, FilePath, ContentType, Size) and the
// two identity columns are written once at creation and never mutated by the
// workflow. ReviewerID is nil when no reviewer could be assigned.
type Submission struct {
	BaseModel

	FileName    string `gorm:"type:varchar(512);not null" json:"file_name"`
	FilePath    string `gorm:"type:text;not null" json:"file_path"`
	ContentType string `gorm:"type:varchar(255)" json:"content_type"`
	Size        int64  `json:"size"`

	UploaderID string  `gorm:"type:uuid;index;not null" json:"uploader_id"`
	ReviewerID *string `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`

	Status     string     `gorm:"type:varchar(32);default:'pending';index" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// IsValidSubmissionStatus reports whether value is a known review status.
func IsValidSubmissionStatus(value string) bool {
	switch value {
	case SubmissionStatusPending, SubmissionStatusDone:
		return true
	}
	return false
}
