package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/retry"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	removed int64
	fail    int // number of initial calls that error
}

func (f *fakePruner) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return 0, errors.New("storage unavailable")
	}
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.removed, nil
}

func (f *fakePruner) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.cutoffs))
	copy(out, f.cutoffs)
	return out
}

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelFatal, logging.FormatText)
}

func TestPruneOnce_CutoffFromRetention(t *testing.T) {
	pruner := &fakePruner{removed: 3}
	w := NewRetentionWorker(pruner, 30, time.Hour, testLogger())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	removed, err := w.PruneOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	calls := pruner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, now.Add(-30*24*time.Hour), calls[0])
}

func TestRun_PrunesImmediatelyAndStops(t *testing.T) {
	pruner := &fakePruner{}
	w := NewRetentionWorker(pruner, 30, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// The first prune happens before the first tick.
	require.Eventually(t, func() bool {
		return len(pruner.calls()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestPruneWithRetry_RecoversFromTransientFailure(t *testing.T) {
	pruner := &fakePruner{fail: 2}
	w := NewRetentionWorker(pruner, 30, time.Hour, testLogger())
	w.retryConfig = &retry.Config{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}

	w.pruneWithRetry(context.Background())
	assert.Len(t, pruner.calls(), 1, "prune should succeed after transient failures")
}
