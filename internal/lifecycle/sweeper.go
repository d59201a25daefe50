package lifecycle

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval matches the one-minute background check of the
// reference frontend.
const DefaultSweepInterval = 60 * time.Second

// TaskSweeper is the slice of the task store the sweeper needs.
type TaskSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Sweeper runs the expiry sweep on a fixed interval until its context
// is canceled. It is owned by whoever opens the store and stopped on
// shutdown; no free-running timers.
type Sweeper struct {
	store    TaskSweeper
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper builds a sweeper. A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(store TaskSweeper, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run blocks, sweeping once per tick, until ctx is canceled. Sweep
// failures are logged and the loop keeps going; the sweep itself is
// idempotent so a retry on the next tick is always safe.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case now := <-ticker.C:
			expired, err := s.store.SweepExpired(ctx, now)
			if err != nil {
				s.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
				continue
			}
			if expired > 0 {
				s.logger.Info("tasks expired", slog.Int("count", expired))
			}
		}
	}
}
