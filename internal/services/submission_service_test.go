package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/database/testutil"
	"github.com/lectorium/lectorium/internal/models"
	apperrors "github.com/lectorium/lectorium/pkg/errors"
)

func newSubmissionService(t *testing.T, db *gorm.DB) *SubmissionService {
	t.Helper()

	notifications, err := NewNotificationService(db)
	require.NoError(t, err)
	svc, err := NewSubmissionService(db, notifications)
	require.NoError(t, err)
	return svc
}

func strPtr(value string) *string {
	return &value
}

func TestSubmissionCreateWithReviewerEmitsAssignment(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	dto, err := svc.Create(ctx, CreateSubmissionInput{
		FileName:    "report.docx",
		FilePath:    "uploads/alice/report.docx",
		ContentType: "application/msword",
		Size:        2048,
		UploaderID:  "alice",
		ReviewerID:  strPtr("bob"),
	})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, dto.Status)
	require.Empty(t, dto.Notes)
	require.Nil(t, dto.ReviewedAt)
	require.NotNil(t, dto.ReviewerID)
	require.Equal(t, "bob", *dto.ReviewerID)

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, "bob", notifications[0].RecipientID)
	require.Equal(t, models.NotificationTypeDocumentAssigned, notifications[0].Type)
	require.False(t, notifications[0].IsRead)
}

func TestSubmissionCreateUnassignedEmitsNothing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	dto, err := svc.Create(context.Background(), CreateSubmissionInput{
		FileName:   "report.docx",
		FilePath:   "uploads/alice/report.docx",
		UploaderID: "alice",
	})
	require.NoError(t, err)
	require.Nil(t, dto.ReviewerID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubmissionListScopedByIdentity(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	_, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "a.pdf", FilePath: "uploads/alice/a.pdf", UploaderID: "alice", ReviewerID: strPtr("bob"),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateSubmissionInput{
		FileName: "b.pdf", FilePath: "uploads/bob/b.pdf", UploaderID: "bob", ReviewerID: strPtr("alice"),
	})
	require.NoError(t, err)

	uploaded, err := svc.ListForUploader(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
	require.Equal(t, "a.pdf", uploaded[0].FileName)

	assigned, err := svc.ListForReviewer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.Equal(t, "b.pdf", assigned[0].FileName)

	_, err = svc.ListForUploader(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSubmissionUpdateByAssignedReviewer(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return frozen })

	ctx := context.Background()
	created, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "report.docx", FilePath: "uploads/alice/report.docx", UploaderID: "alice", ReviewerID: strPtr("bob"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, UpdateReviewInput{
		CallerID:     "bob",
		SubmissionID: created.ID,
		Status:       models.SubmissionStatusDone,
		Notes:        strPtr("looks good"),
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDone, updated.Status)
	require.Equal(t, "looks good", updated.Notes)
	require.NotNil(t, updated.ReviewedAt)
	require.True(t, updated.ReviewedAt.Equal(frozen))

	// One document_reviewed notification for the uploader.
	var reviewed []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationTypeDocumentReviewed).Find(&reviewed).Error)
	require.Len(t, reviewed, 1)
	require.Equal(t, "alice", reviewed[0].RecipientID)
}

func TestSubmissionUpdateByOtherIdentityForbidden(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	created, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "report.docx", FilePath: "uploads/alice/report.docx", UploaderID: "alice", ReviewerID: strPtr("bob"),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{
		CallerID:     "carol",
		SubmissionID: created.ID,
		Status:       models.SubmissionStatusDone,
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// Uploader is not the reviewer either.
	_, err = svc.Update(ctx, UpdateReviewInput{
		CallerID:     "alice",
		SubmissionID: created.ID,
		Status:       models.SubmissionStatusDone,
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	var unchanged models.Submission
	require.NoError(t, db.First(&unchanged, "id = ?", created.ID).Error)
	require.Equal(t, models.SubmissionStatusPending, unchanged.Status)
	require.Empty(t, unchanged.Notes)
	require.Nil(t, unchanged.ReviewedAt)
}

func TestSubmissionUpdateUnassignedForbidden(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	created, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "report.docx", FilePath: "uploads/alice/report.docx", UploaderID: "alice",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{
		CallerID:     "bob",
		SubmissionID: created.ID,
		Status:       models.SubmissionStatusDone,
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSubmissionUpdateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	created, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "report.docx", FilePath: "uploads/alice/report.docx", UploaderID: "alice", ReviewerID: strPtr("bob"),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{SubmissionID: created.ID, Status: "done"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Update(ctx, UpdateReviewInput{CallerID: "bob", Status: "done"})
	requireBadRequest(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{CallerID: "bob", SubmissionID: created.ID})
	requireBadRequest(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{CallerID: "bob", SubmissionID: created.ID, Status: "archived"})
	requireBadRequest(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{CallerID: "bob", SubmissionID: "missing", Status: "done"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmissionUpdateAllowsReopening(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newSubmissionService(t, db)

	ctx := context.Background()
	created, err := svc.Create(ctx, CreateSubmissionInput{
		FileName: "report.docx", FilePath: "uploads/alice/report.docx", UploaderID: "alice", ReviewerID: strPtr("bob"),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateReviewInput{
		CallerID: "bob", SubmissionID: created.ID, Status: models.SubmissionStatusDone,
	})
	require.NoError(t, err)

	// Status membership is the only check, so done -> pending is accepted.
	reopened, err := svc.Update(ctx, UpdateReviewInput{
		CallerID: "bob", SubmissionID: created.ID, Status: models.SubmissionStatusPending,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, reopened.Status)
}

func requireBadRequest(t *testing.T, err error) {
	t.Helper()

	appErr := apperrors.FromError(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
}
