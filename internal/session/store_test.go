package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/port"
	"fieldpilot/internal/session"
)

func setupRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewRedisStore(client), s
}

func TestRedisStore_SaveExistsRevoke(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-1", "user-1", time.Now().Add(time.Hour)))

	ok, err := store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Revoke(ctx, "tok-1"))
	ok, err = store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Expires(t *testing.T) {
	store, s := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-2", "user-1", time.Now().Add(time.Minute)))
	s.FastForward(2 * time.Minute)

	ok, err := store.Exists(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_AlreadyExpiredIsNotStored(t *testing.T) {
	store, s := setupRedisStore(t)
	require.NoError(t, store.Save(context.Background(), "tok-3", "user-1", time.Now().Add(-time.Second)))
	assert.False(t, s.Exists("refresh:tok-3"))
}

func TestRedisStore_Ping(t *testing.T) {
	store, s := setupRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))
	s.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestMemoryStore(t *testing.T) {
	var store port.SessionStore = session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", "u", time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "b", "u", time.Now().Add(-time.Second)))

	ok, _ := store.Exists(ctx, "a")
	assert.True(t, ok)
	ok, _ = store.Exists(ctx, "b")
	assert.False(t, ok, "expired token is not live")

	require.NoError(t, store.Revoke(ctx, "a"))
	ok, _ = store.Exists(ctx, "a")
	assert.False(t, ok)
}
