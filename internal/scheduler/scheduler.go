// Package scheduler runs the periodic delivery-log retention job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultInterval  = 24 * time.Hour
	pruneTimeout     = time.Minute
)

// Pruner deletes delivery records older than a cutoff.
type Pruner interface {
	PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the scheduler configuration.
type Config struct {
	Store     Pruner
	Retention time.Duration
	// Interval between prune runs. Defaults to 24h.
	Interval time.Duration
	Logger   *slog.Logger
}

// Scheduler prunes the delivery log on a fixed interval using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cron: cron, cfg: cfg, now: time.Now, logger: logger}, nil
}

// Start registers the retention job, runs it once immediately, and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pruneTimeout)
			defer cancel()
			if _, err := s.PruneNow(runCtx); err != nil {
				s.logger.Error("delivery log retention failed", slog.Any("error", err))
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling retention job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("retention scheduler started",
		slog.Duration("retention", s.cfg.Retention),
		slog.Duration("interval", s.cfg.Interval))
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// PruneNow deletes delivery records older than the retention window.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.cfg.Store.PruneDeliveries(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned delivery log", slog.Int64("rows", n), slog.Time("cutoff", cutoff))
	}
	return n, nil
}
