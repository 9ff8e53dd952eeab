package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSnapshotStore(NewConnectionFromClient(client), ttl, logger.NewNopLogger()), mr
}

func TestSnapshotStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t, 0)

	data, found, err := store.Get(context.Background(), "sweet_cart:nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestSnapshotStore_SetThenGet(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sweet_cart:s1", []byte(`[{"id":"a"}]`)))

	data, found, err := store.Get(ctx, "sweet_cart:s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, string(data))

	raw, err := mr.Get("sweet_cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, raw)
	assert.Zero(t, mr.TTL("sweet_cart:s1"))
}

func TestSnapshotStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sweet_cart:s1", []byte(`[]`)))
	assert.Equal(t, time.Hour, mr.TTL("sweet_cart:s1"))

	mr.FastForward(30 * time.Minute)
	_, found, err := store.Get(ctx, "sweet_cart:s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, time.Hour, mr.TTL("sweet_cart:s1"), "reads slide the expiry")

	mr.FastForward(2 * time.Hour)
	_, found, err = store.Get(ctx, "sweet_cart:s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotStore_Delete(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`[]`)))
	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t, 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "k", []byte(`[]`)))
}
