package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func newTestCookieStore(t *testing.T, ttl time.Duration) *CookieStore {
	t.Helper()
	s, err := NewCookieStore("test-secret", ttl)
	require.NoError(t, err)
	return s
}

// Every backend must satisfy the same lifecycle.
func TestStores_Lifecycle(t *testing.T) {
	redisStore, _ := newTestRedisStore(t, time.Hour)

	stores := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
		"cookie": newTestCookieStore(t, time.Hour),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := store.Create(ctx, 42)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			userID, err := store.Lookup(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, int64(42), userID)

			other, err := store.Create(ctx, 42)
			require.NoError(t, err)
			assert.NotEqual(t, token, other, "tokens must be unique per session")

			_, err = store.Lookup(ctx, "garbage")
			assert.ErrorIs(t, err, ErrNoSession)

			_, err = store.Lookup(ctx, "")
			assert.ErrorIs(t, err, ErrNoSession)

			assert.NoError(t, store.Destroy(ctx, "never-issued"))
		})
	}
}

func TestMemoryStore_DestroyAndExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.Create(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, s.Destroy(ctx, token))
	_, err = s.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	token, err = s.Create(ctx, 2)
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, err = s.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0, s.Len(), "expired session should be dropped on lookup")
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, _ = s.Create(ctx, 1)
	_, _ = s.Create(ctx, 2)
	now = now.Add(30 * time.Second)
	live, _ := s.Create(ctx, 3)
	now = now.Add(45 * time.Second)

	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 1, s.Len())

	userID, err := s.Lookup(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
}

func TestRedisStore_DestroyAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)

	token, err := s.Create(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKey(token)))
	assert.Equal(t, time.Minute, mr.TTL(redisKey(token)))

	require.NoError(t, s.Destroy(ctx, token))
	_, err = s.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	token, err = s.Create(ctx, 8)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = s.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set(redisKey("bad"), "not-a-number"))

	_, err := s.Lookup(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb, time.Minute)
	mr.Close()

	_, err = s.Lookup(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestCookieStore_RejectsTamperingAndExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestCookieStore(t, time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	token, err := s.Create(ctx, 9)
	require.NoError(t, err)

	other, err := NewCookieStore("another-secret", time.Minute)
	require.NoError(t, err)
	_, err = other.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession, "token signed with a different key must be rejected")

	i := len(token) - 3
	flipped := byte('A')
	if token[i] == 'A' {
		flipped = 'B'
	}
	tampered := token[:i] + string(flipped) + token[i+1:]
	_, err = s.Lookup(ctx, tampered)
	assert.ErrorIs(t, err, ErrNoSession)

	now = now.Add(2 * time.Minute)
	_, err = s.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNewCookieStore_RequiresSecret(t *testing.T) {
	_, err := NewCookieStore("", time.Minute)
	assert.Error(t, err)
}
