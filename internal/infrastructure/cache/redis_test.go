package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"i4e-backend/internal/config"
	"i4e-backend/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	r := NewRedis(config.RedisConfig{Host: host, Port: port, TTL: time.Minute}, logger.Nop())
	require.True(t, r.Available())
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestLock_ExpiredOwnerCannotReleaseSuccessor(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	key := KeyBulkLockPrefix + "7"

	ok, err := r.AcquireLock(ctx, key, "upload-a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = r.AcquireLock(ctx, key, "upload-b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.ReleaseLock(ctx, key, "upload-a"))

	ok, err = r.AcquireLock(ctx, key, "upload-c", time.Minute)
	require.NoError(t, err)
	require.False(t, ok, "upload-b still holds the lock")

	require.NoError(t, r.ReleaseLock(ctx, key, "upload-b"))
	require.False(t, mr.Exists(key))
}

func TestLock_HeldLockIsNotGrantedTwice(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.AcquireLock(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.AcquireLock(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLock_UnavailableRedisIsAnError(t *testing.T) {
	r := &Redis{log: logger.Nop(), defaultTTL: time.Minute}

	ok, err := r.AcquireLock(context.Background(), "k", "a", time.Minute)
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, ok)
	require.ErrorIs(t, r.ReleaseLock(context.Background(), "k", "a"), ErrUnavailable)
}

func TestInvalidateCareerLibrary(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.SetJSON(ctx, KeyCareerMetadata, map[string]int{"n": 1}, 0))
	require.NoError(t, r.SetJSON(ctx, KeyCareerSearchPrefix+"abc", []string{"x"}, 0))
	require.NoError(t, r.SetJSON(ctx, "unrelated", 1, 0))

	require.NoError(t, r.InvalidateCareerLibrary(ctx))
	require.False(t, mr.Exists(KeyCareerMetadata))
	require.False(t, mr.Exists(KeyCareerSearchPrefix+"abc"))
	require.True(t, mr.Exists("unrelated"))
}
