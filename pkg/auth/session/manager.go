package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager stores admin sessions in Redis keyed by the token jti.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Lookup(ctx context.Context, sessionID string) (string, bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.AdminTTL <= 0 {
		return nil, fmt.Errorf("admin session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: cfg.AdminTTL}, nil
}

// Create records a session for username and returns its id.
func (m *Manager) Create(ctx context.Context, username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("username is required")
	}
	id := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(id), username, m.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup returns the username bound to the session, if it is still live.
func (m *Manager) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", false, nil
	}
	username, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return username, true, nil
}

// Revoke deletes the session. Unknown ids are ignored.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// TTL reports how long new sessions live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
