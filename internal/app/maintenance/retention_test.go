package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/database/testutil"
	"github.com/lectorium/lectorium/internal/models"
	"github.com/lectorium/lectorium/internal/services"
)

func seedNotification(t *testing.T, db *gorm.DB, svc *services.NotificationService, createdAt time.Time, read bool) string {
	t.Helper()

	dto, err := svc.Create(context.Background(), services.CreateNotificationInput{
		RecipientID: "bob",
		Type:        models.NotificationTypeDocumentAssigned,
		Title:       "Document assigned for review",
	})
	require.NoError(t, err)

	updates := map[string]any{"created_at": createdAt}
	if read {
		updates["is_read"] = true
		updates["read_at"] = createdAt
	}
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", dto.ID).Updates(updates).Error)

	return dto.ID
}

func TestSweepDeletesOnlyReadAndAged(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper, err := NewSweeper(svc, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	seedNotification(t, db, svc, now.Add(-90*time.Minute), true)  // eligible
	seedNotification(t, db, svc, now.Add(-90*time.Minute), false) // unread, kept
	seedNotification(t, db, svc, now.Add(-30*time.Minute), true)  // too fresh, kept

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestSweepIdempotentWhenNothingEligible(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper, err := NewSweeper(svc, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	seedNotification(t, db, svc, now.Add(-2*time.Hour), true)

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	deleted, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func TestSweepHonoursBatchLimit(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper, err := NewSweeper(svc,
		WithNow(func() time.Time { return now }),
		WithBatchLimit(3),
	)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		seedNotification(t, db, svc, now.Add(-2*time.Hour), true)
	}

	// One tick deletes at most one batch; later ticks drain the rest.
	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)

	deleted, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)

	deleted, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}

func TestSweepEmptyStoreNoop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)

	sweeper, err := NewSweeper(svc)
	require.NoError(t, err)

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, deleted)

	require.NoError(t, sweeper.RunOnce(context.Background()))
}

func TestSweeperOptionDefaults(t *testing.T) {
	svc := &services.NotificationService{}
	_, err := NewSweeper(nil)
	require.Error(t, err)

	sweeper, err := NewSweeper(svc,
		WithSchedule(""),
		WithRetentionWindow(0),
		WithBatchLimit(0),
	)
	require.NoError(t, err)
	require.Equal(t, defaultSchedule, sweeper.schedule)
	require.Equal(t, defaultRetentionWindow, sweeper.window)
	require.Equal(t, defaultBatchLimit, sweeper.batchLimit)
}
