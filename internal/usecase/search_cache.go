package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"i4e-backend/internal/infrastructure/cache"
	"i4e-backend/internal/pkg/logger"
)

const cacheKeyMetadata = cache.KeyCareerMetadata

// CareerCache is the read-through cache for career library queries.
type CareerCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateCareerLibrary(ctx context.Context) error
}

type UploadLocker interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

type searchCacheKeyInput struct {
	Query string `json:"q"`
	Limit int    `json:"limit"`
}

func hashKey(prefix string, in any) string {
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return prefix + hex.EncodeToString(sum[:])
}

// CareerSearchCacheKey keys on the normalized query, so "  Doctor" and
// "doctor" share an entry.
func CareerSearchCacheKey(normalized string, limit int) string {
	return hashKey(cache.KeyCareerSearchPrefix, searchCacheKeyInput{Query: normalized, Limit: limit})
}

func AutocompleteCacheKey(normalized string) string {
	return hashKey(cache.KeyAutocompletePrefix, searchCacheKeyInput{Query: normalized, Limit: autocompleteLimit})
}

func BulkUploadLockKey(userID int64) string {
	return cache.KeyBulkLockPrefix + strconv.FormatInt(userID, 10)
}

func invalidate(ctx context.Context, c CareerCache, log *logger.Logger) {
	if c == nil {
		return
	}
	if err := c.InvalidateCareerLibrary(ctx); err != nil {
		log.Warn("cache invalidation failed", "err", err)
	}
}
