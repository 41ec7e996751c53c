// Package scheduler runs periodic housekeeping jobs. Today that is the
// delivery log retention purge.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

const purgeTimeout = time.Minute

// Config holds the scheduler configuration.
type Config struct {
	Store storage.NotificationStore
	// Retention is how long delivery log entries are kept. Zero disables purging.
	Retention time.Duration
	// Interval is how often the purge runs.
	Interval time.Duration
	Logger   *slog.Logger
	// Now is used by tests; defaults to time.Now.
	Now func() time.Time
}

// Scheduler manages housekeeping jobs using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	logger *slog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{cron: cron, cfg: cfg, logger: cfg.Logger}, nil
}

// Start registers the purge job and starts the gocron scheduler. The first
// purge runs immediately.
func (s *Scheduler) Start(_ context.Context) error {
	if s.cfg.Retention <= 0 {
		s.logger.Info("delivery log retention disabled")
		s.cron.Start()
		return nil
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
			defer cancel()
			if _, err := s.Purge(ctx); err != nil {
				s.logger.Error("delivery log purge failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling delivery log purge: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"retention", s.cfg.Retention.String(), "interval", s.cfg.Interval.String())
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// Purge deletes delivery log entries older than the retention window and
// returns how many were removed.
func (s *Scheduler) Purge(ctx context.Context) (int64, error) {
	if s.cfg.Retention <= 0 {
		return 0, nil
	}
	cutoff := s.cfg.Now().Add(-s.cfg.Retention)
	n, err := s.cfg.Store.DeleteNotificationsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging delivery log before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.LogPurged.Add(float64(n))
	if n > 0 {
		s.logger.Info("purged delivery log", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}
