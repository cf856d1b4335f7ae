package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lectorium/lectorium/internal/services"
	"github.com/lectorium/lectorium/pkg/logger"
	"github.com/lectorium/lectorium/pkg/metrics"
)

const (
	// defaultSchedule runs the sweep at the top of every hour.
	defaultSchedule = "0 * * * *"

	// defaultRetentionWindow is the minimum age a read notification must
	// reach before it becomes eligible for deletion.
	defaultRetentionWindow = time.Hour

	// defaultBatchLimit bounds a single sweep to the backing store's
	// batch-delete limit. A backlog larger than one batch drains over
	// subsequent ticks.
	defaultBatchLimit = 500
)

// Sweeper periodically deletes notifications that have been read and have
// aged past the retention window. A failed sweep is logged and retried on the
// next scheduled tick; no partial state is carried between runs.
type Sweeper struct {
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger

	schedule   string
	window     time.Duration
	batchLimit int
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithRetentionWindow adjusts how long read notifications are retained.
func WithRetentionWindow(window time.Duration) Option {
	return func(s *Sweeper) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithBatchLimit bounds the number of deletions per sweep invocation.
func WithBatchLimit(limit int) Option {
	return func(s *Sweeper) {
		if limit > 0 {
			s.batchLimit = limit
		}
	}
}

// NewSweeper constructs a Sweeper with hourly defaults.
func NewSweeper(notifications *services.NotificationService, opts ...Option) (*Sweeper, error) {
	if notifications == nil {
		return nil, errors.New("retention sweeper: notification service is required")
	}

	sweeper := &Sweeper{
		notifications: notifications,
		now:           time.Now,
		log:           logger.WithModule("maintenance"),
		schedule:      defaultSchedule,
		window:        defaultRetentionWindow,
		batchLimit:    defaultBatchLimit,
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper, nil
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.Warn("notification retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// Sweep deletes one batch of read notifications older than the retention
// window and reports how many rows were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := s.now().UTC().Add(-s.window)
	deleted, err := s.notifications.DeleteReadOlderThan(ctx, cutoff, s.batchLimit)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		metrics.NotificationsSwept.Add(float64(deleted))
		s.log.Info("notification retention sweep finished",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}

	return deleted, nil
}

// RunOnce executes the sweep synchronously. Used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	var errs error
	if _, err := s.Sweep(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
