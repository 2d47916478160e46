package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/models"
)

type fakeWhitelistLookup struct {
	entries map[string]*models.WhitelistEntry
	calls   int
}

func (f *fakeWhitelistLookup) GetByNormalized(ctx context.Context, normalized string) (*models.WhitelistEntry, error) {
	f.calls++
	return f.entries[normalized], nil
}

type fakeBlacklistLookup struct {
	listed map[string]bool
	calls  int
}

func (f *fakeBlacklistLookup) IsBlacklisted(ctx context.Context, normalized string) (bool, error) {
	f.calls++
	return f.listed[normalized], nil
}

func testIndex(t *testing.T, wl *fakeWhitelistLookup, bl *fakeBlacklistLookup) (*ScreeningIndex, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCacheFromClient(client)
	return NewScreeningIndex(wl, bl, cache, time.Minute), mr
}

func TestScreeningIndex_WhitelistMatch_CachesHit(t *testing.T) {
	entry := &models.WhitelistEntry{
		ID:               "wl-1",
		DisplayName:      "Alice",
		NormalizedNumber: "+15550123456",
	}
	wl := &fakeWhitelistLookup{entries: map[string]*models.WhitelistEntry{entry.NormalizedNumber: entry}}
	ix, _ := testIndex(t, wl, &fakeBlacklistLookup{})
	ctx := testContext(t)

	got, err := ix.WhitelistMatch(ctx, entry.NormalizedNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wl-1", got.ID)
	assert.Equal(t, 1, wl.calls)

	// Second lookup is served from cache.
	got, err = ix.WhitelistMatch(ctx, entry.NormalizedNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wl-1", got.ID)
	assert.Equal(t, 1, wl.calls)
}

func TestScreeningIndex_WhitelistMatch_CachesMiss(t *testing.T) {
	wl := &fakeWhitelistLookup{entries: map[string]*models.WhitelistEntry{}}
	ix, _ := testIndex(t, wl, &fakeBlacklistLookup{})
	ctx := testContext(t)

	got, err := ix.WhitelistMatch(ctx, "+15550000000")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, wl.calls)

	got, err = ix.WhitelistMatch(ctx, "+15550000000")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, wl.calls, "miss should be cached")
}

func TestScreeningIndex_IsBlacklisted(t *testing.T) {
	bl := &fakeBlacklistLookup{listed: map[string]bool{"+15559999999": true}}
	ix, _ := testIndex(t, &fakeWhitelistLookup{}, bl)
	ctx := testContext(t)

	listed, err := ix.IsBlacklisted(ctx, "+15559999999")
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = ix.IsBlacklisted(ctx, "+15559999999")
	require.NoError(t, err)
	assert.True(t, listed)
	assert.Equal(t, 1, bl.calls)

	listed, err = ix.IsBlacklisted(ctx, "+15550000001")
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestScreeningIndex_Invalidate(t *testing.T) {
	entry := &models.WhitelistEntry{ID: "wl-2", NormalizedNumber: "+15550123456"}
	wl := &fakeWhitelistLookup{entries: map[string]*models.WhitelistEntry{entry.NormalizedNumber: entry}}
	ix, _ := testIndex(t, wl, &fakeBlacklistLookup{})
	ctx := testContext(t)

	_, err := ix.WhitelistMatch(ctx, entry.NormalizedNumber)
	require.NoError(t, err)
	assert.Equal(t, 1, wl.calls)

	ix.Invalidate(ctx, entry.NormalizedNumber)

	_, err = ix.WhitelistMatch(ctx, entry.NormalizedNumber)
	require.NoError(t, err)
	assert.Equal(t, 2, wl.calls, "invalidation should force a store read")
}

func TestScreeningIndex_TTLExpiry(t *testing.T) {
	bl := &fakeBlacklistLookup{listed: map[string]bool{"+15559999999": true}}
	ix, mr := testIndex(t, &fakeWhitelistLookup{}, bl)
	ctx := testContext(t)

	_, err := ix.IsBlacklisted(ctx, "+15559999999")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = ix.IsBlacklisted(ctx, "+15559999999")
	require.NoError(t, err)
	assert.Equal(t, 2, bl.calls, "expired entry should be refetched")
}

func TestScreeningIndex_NoCache(t *testing.T) {
	bl := &fakeBlacklistLookup{listed: map[string]bool{"+15559999999": true}}
	ix := NewScreeningIndex(&fakeWhitelistLookup{}, bl, nil, time.Minute)
	ctx := testContext(t)

	listed, err := ix.IsBlacklisted(ctx, "+15559999999")
	require.NoError(t, err)
	assert.True(t, listed)
}
