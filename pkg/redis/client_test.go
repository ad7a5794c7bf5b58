package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, "shop:rate_limit:login:127.0.0.1", mock.expireCalls[0].key)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(2), count)
	assert.Len(t, mock.expireCalls, 1, "expire should only be set on the first hit")

	allowed, _, err = client.FixedWindowAllow(ctx, "login:127.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "shop:cart:abc", client.CartKey("abc"))
	assert.Equal(t, "shop:session:jti-1", client.SessionKey("jti-1"))
	assert.Equal(t, "shop:checkout:snapshot:ORDER-1", client.CheckoutSnapshotKey("ORDER-1"))
	assert.Equal(t, "shop:rate_limit:login", client.RateLimitKey("login"))
	assert.Equal(t, "shop:cart", client.CartKey("  "), "blank parts are skipped")
}

func TestMiniredisRoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	key := client.CartKey("c1")
	require.NoError(t, client.Set(ctx, key, `{"items":[]}`, time.Hour))

	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, got)
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, Nil)

	require.NoError(t, client.Del(ctx, key), "deleting an absent key is not an error")
	require.NoError(t, client.Ping(ctx))
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	_, err := client.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
