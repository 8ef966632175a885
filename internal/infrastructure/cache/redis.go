package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"i4e-backend/internal/config"
	"i4e-backend/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Key layout shared with the usecases.
const (
	KeyCareerMetadata     = "careerlib:metadata"
	KeyCareerSearchPrefix = "careerlib:search:"
	KeyAutocompletePrefix = "careerlib:autocomplete:"
	KeyBulkLockPrefix     = "careerlib:bulk:"
	KeyOTPPrefix          = "otp:"
)

var ErrUnavailable = errors.New("redis unavailable")

type Redis struct {
	client     *redis.Client
	log        *logger.Logger
	defaultTTL time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects and pings. When Redis cannot be reached the returned
// value bypasses the cache instead of failing every call.
func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 600 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", "addr", net.JoinHostPort(cfg.Host, cfg.Port), "err", err)
		_ = client.Close()
		return &Redis{log: log, defaultTTL: ttl}
	}

	return &Redis{client: client, log: log, defaultTTL: ttl}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.Warn("redis command failed, bypassing cache", "err", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.Available() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.log.Warn("redis delete failed", "key", k, "pattern", pattern, "err", err)
		}
	}
	return iter.Err()
}

// InvalidateCareerLibrary drops every cached read that a career or reference
// write can make stale.
func (r *Redis) InvalidateCareerLibrary(ctx context.Context) error {
	if !r.Available() {
		return nil
	}
	var firstErr error
	if err := r.Delete(ctx, KeyCareerMetadata); err != nil {
		firstErr = err
	}
	for _, p := range []string{KeyCareerSearchPrefix + "*", KeyAutocompletePrefix + "*"} {
		if err := r.DeleteByPattern(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// releaseLockScript deletes the lock only while it still belongs to owner.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock takes key with SET NX. Without Redis there is nothing to
// coordinate on, so ErrUnavailable is returned instead of granting it.
func (r *Redis) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return false, ErrUnavailable
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

// ReleaseLock is a no-op when the lock expired and was taken by someone else.
func (r *Redis) ReleaseLock(ctx context.Context, key, owner string) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if err := releaseLockScript.Run(ctx, r.client, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) GetString(ctx context.Context, key string) (string, bool, error) {
	if !r.Available() {
		return "", false, ErrUnavailable
	}
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Incr bumps a counter; the first increment starts its ttl.
func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if !r.Available() {
		return 0, ErrUnavailable
	}
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.ExpireNX(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	if !r.Available() {
		return 0, ErrUnavailable
	}
	return r.client.TTL(ctx, key).Result()
}
