package tracker

import (
	"context"
	"time"

	"github.com/benvon/flow/internal/logger"
	"go.uber.org/zap"
)

// Refresher re-fetches server state
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Resyncer periodically refreshes a tracker so that starts and stops made by
// other clients show up without user action.
type Resyncer struct {
	target   Refresher
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResyncer creates a resyncer. A non-positive interval disables it.
func NewResyncer(target Refresher, interval time.Duration, log *zap.Logger) *Resyncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resyncer{target: target, interval: interval, timeout: 30 * time.Second, logger: log}
}

// Start runs the resync loop until ctx is cancelled.
func (r *Resyncer) Start(ctx context.Context) error {
	if r.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.resync(ctx); err != nil {
				r.logger.Warn("timer_resync_failed", zap.String("error", logger.SanitizeError(err)))
			}
		}
	}
}

func (r *Resyncer) resync(ctx context.Context) error {
	if r.target == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.target.Refresh(ctx)
}
