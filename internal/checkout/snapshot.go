package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// SnapshotStore keeps the priced cart lines per provider order so capture can
// record exactly what was sent for approval.
type SnapshotStore interface {
	Save(ctx context.Context, orderID string, items []cart.Item) error
	Load(ctx context.Context, orderID string) ([]cart.Item, bool, error)
	Delete(ctx context.Context, orderID string) error
}

type snapshotKeyer interface {
	CheckoutSnapshotKey(orderID string) string
}

type RedisSnapshotStore struct {
	kv    redisclient.KV
	keyer snapshotKeyer
	ttl   time.Duration
}

func NewRedisSnapshotStore(client *redisclient.Client, ttl time.Duration) (*RedisSnapshotStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	return &RedisSnapshotStore{kv: client, keyer: client, ttl: ttl}, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, orderID string, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout snapshot")
	}
	if err := s.kv.Set(ctx, s.keyer.CheckoutSnapshotKey(orderID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store checkout snapshot")
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, orderID string) ([]cart.Item, bool, error) {
	raw, err := s.kv.Get(ctx, s.keyer.CheckoutSnapshotKey(orderID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout snapshot")
	}
	var items []cart.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout snapshot")
	}
	return items, true, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, orderID string) error {
	if err := s.kv.Del(ctx, s.keyer.CheckoutSnapshotKey(orderID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete checkout snapshot")
	}
	return nil
}
