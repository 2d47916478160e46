// Package worker provides background maintenance jobs for the call screening
// service.
package worker

import (
	"context"
	"time"

	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/retry"
)

// EventPruner deletes activity log rows older than a cutoff.
type EventPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker periodically prunes call events older than the retention
// window. It runs outside the decision path so a slow prune can never delay
// a call evaluation.
type RetentionWorker struct {
	events        EventPruner
	retentionDays int
	interval      time.Duration
	retryConfig   *retry.Config
	logger        *logging.Logger
	now           func() time.Time
}

// NewRetentionWorker creates a retention worker
func NewRetentionWorker(events EventPruner, retentionDays int, interval time.Duration, logger *logging.Logger) *RetentionWorker {
	return &RetentionWorker{
		events:        events,
		retentionDays: retentionDays,
		interval:      interval,
		retryConfig:   retry.DefaultConfig(),
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Run prunes once immediately, then on every interval tick until the context
// ends.
func (w *RetentionWorker) Run(ctx context.Context) {
	w.logger.WithFields(map[string]interface{}{
		"retentionDays": w.retentionDays,
		"interval":      w.interval.String(),
	}).Info("retention worker started")

	w.pruneWithRetry(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			w.pruneWithRetry(ctx)
		}
	}
}

// PruneOnce runs a single prune pass without retries
func (w *RetentionWorker) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-time.Duration(w.retentionDays) * 24 * time.Hour)
	return w.events.PruneOlderThan(ctx, cutoff)
}

func (w *RetentionWorker) pruneWithRetry(ctx context.Context) {
	err := retry.WithExponentialBackoff(ctx, w.retryConfig, func(ctx context.Context, attempt int) error {
		removed, err := w.events.PruneOlderThan(ctx, w.now().Add(-time.Duration(w.retentionDays)*24*time.Hour))
		if err != nil {
			return err
		}
		if removed > 0 {
			w.logger.WithField("removed", removed).Info("pruned old call events")
		}
		return nil
	})
	if err != nil {
		w.logger.WithError(err).Error("retention prune failed")
	}
}
