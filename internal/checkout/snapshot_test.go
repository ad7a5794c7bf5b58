package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSnapshotStoreLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.Wrap(redislib.NewClient(&redislib.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisSnapshotStore(client, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := store.Load(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.False(t, found)

	items := []cart.Item{{ProductID: "p1", Name: "Mug", Price: 12.5, Quantity: 2}}
	require.NoError(t, store.Save(ctx, "ORDER-1", items))
	assert.Equal(t, time.Hour, mr.TTL(client.CheckoutSnapshotKey("ORDER-1")))

	got, found, err := store.Load(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, items, got)

	require.NoError(t, store.Delete(ctx, "ORDER-1"))
	_, found, err = store.Load(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisSnapshotStoreRequiresTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.Wrap(redislib.NewClient(&redislib.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	_, err := NewRedisSnapshotStore(client, 0)
	assert.Error(t, err)
	_, err = NewRedisSnapshotStore(nil, time.Hour)
	assert.Error(t, err)
}
