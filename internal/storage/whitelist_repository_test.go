package storage

// Integration tests. They require a migrated callscreener_test database on
// localhost and skip when it is unavailable or in -short mode.

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/models"
)

func testWhitelistEntry(normalized string) *models.WhitelistEntry {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.WhitelistEntry{
		ID:               uuid.NewString(),
		DisplayName:      "Test Entry",
		PhoneNumber:      normalized,
		NormalizedNumber: normalized,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestWhitelistRepository_UpsertReplacesOnConflict(t *testing.T) {
	db := testDB(t)
	repo := NewWhitelistRepository(db)
	ctx := testContext(t)

	normalized := "+15550100001"
	t.Cleanup(func() { _ = repo.DeleteByNormalized(testContext(t), normalized) })

	first := testWhitelistEntry(normalized)
	first.DisplayName = "First"
	require.NoError(t, repo.Upsert(ctx, first))

	second := testWhitelistEntry(normalized)
	second.DisplayName = "Second"
	require.NoError(t, repo.Upsert(ctx, second))

	// Exactly one row survives, keyed by the later insert.
	got, err := repo.GetByNormalized(ctx, normalized)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "Second", got.DisplayName)

	gone, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "first entry should have been replaced")
}

func TestWhitelistRepository_IsWhitelisted(t *testing.T) {
	db := testDB(t)
	repo := NewWhitelistRepository(db)
	ctx := testContext(t)

	normalized := "+15550100002"
	t.Cleanup(func() { _ = repo.DeleteByNormalized(testContext(t), normalized) })

	listed, err := repo.IsWhitelisted(ctx, normalized)
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, repo.Upsert(ctx, testWhitelistEntry(normalized)))

	listed, err = repo.IsWhitelisted(ctx, normalized)
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestWhitelistRepository_UpdateBumpsUpdatedAt(t *testing.T) {
	db := testDB(t)
	repo := NewWhitelistRepository(db)
	ctx := testContext(t)

	normalized := "+15550100003"
	t.Cleanup(func() { _ = repo.DeleteByNormalized(testContext(t), normalized) })

	entry := testWhitelistEntry(normalized)
	entry.CreatedAt = entry.CreatedAt.Add(-time.Hour)
	entry.UpdatedAt = entry.CreatedAt
	require.NoError(t, repo.Upsert(ctx, entry))

	entry.DisplayName = "Renamed"
	entry.EmergencyBypass = true
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.DisplayName)
	assert.True(t, got.EmergencyBypass)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestWhitelistRepository_DeleteByNormalized(t *testing.T) {
	db := testDB(t)
	repo := NewWhitelistRepository(db)
	ctx := testContext(t)

	normalized := "+15550100004"
	require.NoError(t, repo.Upsert(ctx, testWhitelistEntry(normalized)))
	require.NoError(t, repo.DeleteByNormalized(ctx, normalized))

	listed, err := repo.IsWhitelisted(ctx, normalized)
	require.NoError(t, err)
	assert.False(t, listed)
}
