package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/models"
	"github.com/redis/go-redis/v9"
)

// ScreeningIndex answers the list-membership questions on the decision path,
// fronting the whitelist and blacklist repositories with a short-TTL Redis
// cache. Cache faults are logged and fall through to Postgres; the index
// never fails because of the cache alone.
type ScreeningIndex struct {
	whitelist WhitelistLookup
	blacklist BlacklistLookup
	cache     *RedisCache
	ttl       time.Duration
}

// WhitelistLookup is the whitelist read surface the index needs.
type WhitelistLookup interface {
	GetByNormalized(ctx context.Context, normalized string) (*models.WhitelistEntry, error)
}

// BlacklistLookup is the blacklist read surface the index needs.
type BlacklistLookup interface {
	IsBlacklisted(ctx context.Context, normalized string) (bool, error)
}

// NewScreeningIndex creates a screening index. cache may be nil to run
// uncached.
func NewScreeningIndex(whitelist WhitelistLookup, blacklist BlacklistLookup, cache *RedisCache, ttl time.Duration) *ScreeningIndex {
	return &ScreeningIndex{
		whitelist: whitelist,
		blacklist: blacklist,
		cache:     cache,
		ttl:       ttl,
	}
}

const (
	whitelistKeyPrefix = "screen:wl:"
	blacklistKeyPrefix = "screen:bl:"

	// cachedMiss marks a confirmed absence so misses are cached too.
	cachedMiss = "-"
)

// WhitelistMatch returns the whitelist entry for a normalized number, or nil
// when the number is not whitelisted.
func (ix *ScreeningIndex) WhitelistMatch(ctx context.Context, normalized string) (*models.WhitelistEntry, error) {
	key := whitelistKeyPrefix + normalized

	if ix.cache != nil {
		cached, err := ix.cache.Get(ctx, key)
		switch {
		case err == nil && cached == cachedMiss:
			return nil, nil
		case err == nil:
			var entry models.WhitelistEntry
			if jsonErr := json.Unmarshal([]byte(cached), &entry); jsonErr == nil {
				return &entry, nil
			}
		case !errors.Is(err, redis.Nil):
			logging.FromContext(ctx).WithError(err).Warn("whitelist cache read failed")
		}
	}

	entry, err := ix.whitelist.GetByNormalized(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if ix.cache != nil {
		value := cachedMiss
		if entry != nil {
			if encoded, jsonErr := json.Marshal(entry); jsonErr == nil {
				value = string(encoded)
			}
		}
		if err := ix.cache.Set(ctx, key, value, ix.ttl); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("whitelist cache write failed")
		}
	}
	return entry, nil
}

// IsBlacklisted reports whether a normalized number is blacklisted.
func (ix *ScreeningIndex) IsBlacklisted(ctx context.Context, normalized string) (bool, error) {
	key := blacklistKeyPrefix + normalized

	if ix.cache != nil {
		cached, err := ix.cache.Get(ctx, key)
		switch {
		case err == nil:
			return cached == "1", nil
		case !errors.Is(err, redis.Nil):
			logging.FromContext(ctx).WithError(err).Warn("blacklist cache read failed")
		}
	}

	listed, err := ix.blacklist.IsBlacklisted(ctx, normalized)
	if err != nil {
		return false, err
	}

	if ix.cache != nil {
		value := "0"
		if listed {
			value = "1"
		}
		if err := ix.cache.Set(ctx, key, value, ix.ttl); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("blacklist cache write failed")
		}
	}
	return listed, nil
}

// Invalidate drops cached membership for a normalized number. Called after
// any whitelist or blacklist mutation touching that number.
func (ix *ScreeningIndex) Invalidate(ctx context.Context, normalized string) {
	if ix.cache == nil || normalized == "" {
		return
	}
	if err := ix.cache.Del(ctx, whitelistKeyPrefix+normalized, blacklistKeyPrefix+normalized); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("membership cache invalidation failed")
	}
}
