package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Store persists carts by opaque id. An expired cart is indistinguishable
// from one that never existed: Get returns (nil, nil) for both.
type Store interface {
	Get(ctx context.Context, cartID string) (*Cart, error)
	Put(ctx context.Context, cartID string, cart *Cart) error
	Delete(ctx context.Context, cartID string) error
}

type cartKeyer interface {
	CartKey(cartID string) string
}

// RedisStore keeps each cart as a JSON document with a sliding TTL.
type RedisStore struct {
	kv    redisclient.KV
	keyer cartKeyer
	ttl   time.Duration
}

// NewRedisStore builds the cart store. ttl is refreshed on every Put.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &RedisStore{kv: client, keyer: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.keyer.CartKey(cartID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	c.normalize()
	return &c, nil
}

func (s *RedisStore) Put(ctx context.Context, cartID string, c *Cart) error {
	if c == nil {
		c = New()
	}
	c.normalize()
	payload, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.keyer.CartKey(cartID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cart")
	}
	return nil
}

// Delete is idempotent.
func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	if err := s.kv.Del(ctx, s.keyer.CartKey(cartID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}
