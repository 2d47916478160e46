package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/models"
)

func testCallEvent(normalized string, ts time.Time) *models.CallEvent {
	return &models.CallEvent{
		ID:               uuid.NewString(),
		PhoneNumber:      normalized,
		NormalizedNumber: normalized,
		Timestamp:        ts,
		Action:           models.ActionBlocked,
		Reason:           models.ReasonNotWhitelisted,
	}
}

func TestCallEventRepository_WindowQueries(t *testing.T) {
	db := testDB(t)
	repo := NewCallEventRepository(db)
	ctx := testContext(t)

	normalized := "+15550200001"
	now := time.Now().UTC()
	t.Cleanup(func() {
		_, _ = db.Pool().Exec(testContext(t),
			`DELETE FROM call_events WHERE normalized_number = $1`, normalized)
	})

	require.NoError(t, repo.Log(ctx, testCallEvent(normalized, now.Add(-2*time.Minute))))
	require.NoError(t, repo.Log(ctx, testCallEvent(normalized, now.Add(-10*time.Minute))))

	// Cutoff at now-3m: only the 2-minute-old event counts.
	count, err := repo.CountInWindow(ctx, normalized, now.Add(-3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := repo.ExistsInWindow(ctx, normalized, now.Add(-3*time.Minute))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsInWindow(ctx, normalized, now.Add(-1*time.Minute))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCallEventRepository_PruneOlderThan(t *testing.T) {
	db := testDB(t)
	repo := NewCallEventRepository(db)
	ctx := testContext(t)

	normalized := "+15550200002"
	now := time.Now().UTC()
	t.Cleanup(func() {
		_, _ = db.Pool().Exec(testContext(t),
			`DELETE FROM call_events WHERE normalized_number = $1`, normalized)
	})

	old := testCallEvent(normalized, now.Add(-40*24*time.Hour))
	fresh := testCallEvent(normalized, now.Add(-time.Hour))
	require.NoError(t, repo.Log(ctx, old))
	require.NoError(t, repo.Log(ctx, fresh))

	cutoff := now.Add(-30 * 24 * time.Hour)
	_, err := repo.PruneOlderThan(ctx, cutoff)
	require.NoError(t, err)

	gone, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "event older than cutoff should be pruned")

	kept, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept, "event newer than cutoff should be untouched")
}

func TestCallEventRepository_CountForDay(t *testing.T) {
	db := testDB(t)
	repo := NewCallEventRepository(db)
	ctx := testContext(t)

	normalized := "+15550200003"
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	t.Cleanup(func() {
		_, _ = db.Pool().Exec(testContext(t),
			`DELETE FROM call_events WHERE normalized_number = $1`, normalized)
	})

	before, err := repo.CountForDay(ctx, models.ActionBlocked, dayStart, dayEnd)
	require.NoError(t, err)

	require.NoError(t, repo.Log(ctx, testCallEvent(normalized, now)))

	after, err := repo.CountForDay(ctx, models.ActionBlocked, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
