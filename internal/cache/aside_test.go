package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestAsideMissLoadsAndPopulates(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	loads := 0
	got, err := Aside(ctx, rdb, "post:1", time.Minute, func() (fakePost, error) {
		loads++
		return fakePost{ID: 1, Title: "hello"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "hello", got.Title)

	// Second call should be a hit and not invoke the loader.
	got, err = Aside(ctx, rdb, "post:1", time.Minute, func() (fakePost, error) {
		loads++
		return fakePost{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "hello", got.Title)
	assert.True(t, mr.Exists("post:1"))
}

func TestAsideLoadErrorPassesThrough(t *testing.T) {
	_, rdb := newTestRedis(t)

	wantErr := errors.New("db down")
	_, err := Aside(context.Background(), rdb, "post:2", time.Minute, func() (fakePost, error) {
		return fakePost{}, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, GetJSON(context.Background(), rdb, "post:2", &fakePost{}))
}

func TestAsideNilClientAlwaysLoads(t *testing.T) {
	loads := 0
	for i := 0; i < 2; i++ {
		got, err := Aside(context.Background(), nil, "post:3", time.Minute, func() (fakePost, error) {
			loads++
			return fakePost{ID: 3}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, uint(3), got.ID)
	}
	assert.Equal(t, 2, loads)
}

func TestMarkViewedDedupesWithinWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	assert.True(t, MarkViewed(ctx, rdb, 42, "ip:10.0.0.1", time.Minute))
	assert.False(t, MarkViewed(ctx, rdb, 42, "ip:10.0.0.1", time.Minute))

	// Different visitor is independent.
	assert.True(t, MarkViewed(ctx, rdb, 42, "ip:10.0.0.2", time.Minute))

	// After the window expires the same visitor counts again.
	mr.FastForward(2 * time.Minute)
	assert.True(t, MarkViewed(ctx, rdb, 42, "ip:10.0.0.1", time.Minute))
}

func TestMarkViewedZeroWindowAlwaysCounts(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	assert.True(t, MarkViewed(ctx, rdb, 7, "ip:10.0.0.1", 0))
	assert.True(t, MarkViewed(ctx, rdb, 7, "ip:10.0.0.1", 0))
}

func TestTokenBlacklist(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, BlacklistToken(ctx, rdb, "jti-123", time.Hour))
	assert.True(t, IsTokenBlacklisted(ctx, rdb, "jti-123"))
	assert.False(t, IsTokenBlacklisted(ctx, rdb, "jti-456"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, IsTokenBlacklisted(ctx, rdb, "jti-123"))
}

func TestInvalidatePost(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	SetJSON(ctx, rdb, PostKey(9), fakePost{ID: 9}, time.Minute)
	var out fakePost
	require.True(t, GetJSON(ctx, rdb, PostKey(9), &out))

	InvalidatePost(ctx, rdb, 9)
	assert.False(t, GetJSON(ctx, rdb, PostKey(9), &out))
}
