package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/models"
	apperrors "github.com/lectorium/lectorium/pkg/errors"
	"github.com/lectorium/lectorium/pkg/logger"
	"github.com/lectorium/lectorium/pkg/metrics"
)

// SubmissionDTO represents the API-friendly submission payload.
type SubmissionDTO struct {
	ID          string     `json:"id"`
	FileName    string     `json:"file_name"`
	FilePath    string     `json:"file_path"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	UploaderID  string     `json:"uploader_id"`
	ReviewerID  *string    `json:"reviewer_id,omitempty"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// CreateSubmissionInput captures the fields persisted when a document enters
// review. ReviewerID is nil when assignment found no candidate.
type CreateSubmissionInput struct {
	FileName    string
	FilePath    string
	ContentType string
	Size        int64
	UploaderID  string
	ReviewerID  *string
}

// UpdateReviewInput describes a reviewer's status mutation. A nil Notes
// pointer leaves the notes empty.
type UpdateReviewInput struct {
	CallerID     string
	SubmissionID string
	Status       string
	Notes        *string
}

// SubmissionService owns the submission lifecycle: creation from upload
// intake, identity-scoped listing, and the reviewer-gated status transition.
// Notification emission is best effort and never fails the primary write.
type SubmissionService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
	log           *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(db *gorm.DB, notifications *NotificationService) (*SubmissionService, error) {
	if db == nil {
		return nil, errors.New("submission service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("submission service: notification service is required")
	}
	return &SubmissionService{
		db:            db,
		notifications: notifications,
		now:           time.Now,
		log:           logger.WithModule("submissions"),
	}, nil
}

// WithClock overrides the clock used for review timestamps, for tests.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create persists a new pending submission and, when a reviewer was assigned,
// emits a document_assigned notification to that reviewer.
func (s *SubmissionService) Create(ctx context.Context, input CreateSubmissionInput) (*SubmissionDTO, error) {
	ctx = ensureContext(ctx)

	uploaderID := strings.TrimSpace(input.UploaderID)
	if uploaderID == "" {
		return nil, errors.New("submission service: uploader id is required")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, errors.New("submission service: file name is required")
	}

	var reviewerID *string
	if input.ReviewerID != nil {
		if trimmed := strings.TrimSpace(*input.ReviewerID); trimmed != "" {
			reviewerID = &trimmed
		}
	}

	submission := models.Submission{
		FileName:    fileName,
		FilePath:    strings.TrimSpace(input.FilePath),
		ContentType: strings.TrimSpace(input.ContentType),
		Size:        input.Size,
		UploaderID:  uploaderID,
		ReviewerID:  reviewerID,
		Status:      models.SubmissionStatusPending,
		Notes:       "",
	}

	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create submission")
	}

	assignment := "unassigned"
	if reviewerID != nil {
		assignment = "assigned"
		s.notifyBestEffort(ctx, CreateNotificationInput{
			RecipientID: *reviewerID,
			Type:        models.NotificationTypeDocumentAssigned,
			Title:       "Document assigned for review",
			Message:     fmt.Sprintf("%q is waiting for your review.", submission.FileName),
			ActionURL:   "/submissions/" + submission.ID,
			Data: map[string]any{
				"submission_id": submission.ID,
				"file_name":     submission.FileName,
				"uploader_id":   submission.UploaderID,
			},
		})
	}
	metrics.SubmissionsCreated.WithLabelValues(assignment).Inc()

	dto := mapSubmission(submission)
	return &dto, nil
}

// ListForUploader returns all submissions created by the identity.
func (s *SubmissionService) ListForUploader(ctx context.Context, identity string) ([]SubmissionDTO, error) {
	return s.listByColumn(ctx, "uploader_id", identity)
}

// ListForReviewer returns all submissions assigned to the identity.
func (s *SubmissionService) ListForReviewer(ctx context.Context, identity string) ([]SubmissionDTO, error) {
	return s.listByColumn(ctx, "reviewer_id", identity)
}

func (s *SubmissionService) listByColumn(ctx context.Context, column, identity string) ([]SubmissionDTO, error) {
	ctx = ensureContext(ctx)

	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var rows []models.Submission
	if err := s.db.WithContext(ctx).
		Where(column+" = ?", identity).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to list submissions")
	}

	items := make([]SubmissionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSubmission(row))
	}
	return items, nil
}

// Update applies a reviewer's status mutation. Only the assigned reviewer may
// mutate a submission; a terminal status emits a document_reviewed
// notification to the uploader.
//
// Membership in the status set is the only status check performed, so the
// reviewer can move a done submission back to pending.
func (s *SubmissionService) Update(ctx context.Context, input UpdateReviewInput) (*SubmissionDTO, error) {
	ctx = ensureContext(ctx)

	callerID := strings.TrimSpace(input.CallerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	submissionID := strings.TrimSpace(input.SubmissionID)
	if submissionID == "" {
		return nil, apperrors.NewBadRequest("submission id is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		return nil, apperrors.NewBadRequest("status is required")
	}
	if !models.IsValidSubmissionStatus(status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown status %q", status))
	}

	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to load submission")
	}

	if submission.ReviewerID == nil || *submission.ReviewerID != callerID {
		return nil, apperrors.ErrForbidden
	}

	notes := ""
	if input.Notes != nil {
		notes = strings.TrimSpace(*input.Notes)
	}

	reviewedAt := s.now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&submission).
		Updates(map[string]any{
			"status":      status,
			"notes":       notes,
			"reviewed_at": reviewedAt,
		}).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to update submission")
	}

	submission.Status = status
	submission.Notes = notes
	submission.ReviewedAt = &reviewedAt

	if status == models.SubmissionStatusDone {
		metrics.ReviewsCompleted.Inc()
		s.notifyBestEffort(ctx, CreateNotificationInput{
			RecipientID: submission.UploaderID,
			Type:        models.NotificationTypeDocumentReviewed,
			Title:       "Document reviewed",
			Message:     fmt.Sprintf("%q has been reviewed.", submission.FileName),
			ActionURL:   "/submissions/" + submission.ID,
			Data: map[string]any{
				"submission_id": submission.ID,
				"file_name":     submission.FileName,
				"reviewer_id":   callerID,
			},
		})
	}

	dto := mapSubmission(submission)
	return &dto, nil
}

// notifyBestEffort runs notification emission as a post-commit side effect.
// Failures are logged and counted, never propagated to the primary operation.
func (s *SubmissionService) notifyBestEffort(ctx context.Context, input CreateNotificationInput) {
	if _, err := s.notifications.Create(ctx, input); err != nil {
		metrics.NotificationsEmitted.WithLabelValues(input.Type, "error").Inc()
		s.log.Warn("notification emission failed",
			zap.String("type", input.Type),
			zap.String("recipient_id", input.RecipientID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(input.Type, "ok").Inc()
}

func mapSubmission(row models.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:          row.ID,
		FileName:    row.FileName,
		FilePath:    row.FilePath,
		ContentType: row.ContentType,
		Size:        row.Size,
		UploaderID:  row.UploaderID,
		ReviewerID:  row.ReviewerID,
		Status:      row.Status,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
		ReviewedAt:  row.ReviewedAt,
	}
}
