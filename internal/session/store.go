package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrVersionConflict  = errors.New("session version conflict")
	ErrNotFound         = errors.New("session not found")
)

// Store persists sessions between requests.
type Store interface {
	// Create saves data, replacing any session with the same ID. A new ID
	// starts at Version 1; a replacement gets the stored Version + 1 so
	// copies read before it fail Update with ErrVersionConflict.
	Create(ctx context.Context, data *Session) error

	// Get returns nil, nil when the session does not exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Update saves data if its Version matches the stored one, then bumps
	// Version and UpdatedAt on data.
	// Returns ErrVersionConflict or ErrNotFound otherwise.
	Update(ctx context.Context, data *Session) error

	Ping(ctx context.Context) error
	Close() error
}

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

const defaultTTL = 24 * time.Hour

type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	redisTTL    time.Duration
}

func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the key expiry. Reads and writes refresh it.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// NewStore builds a store of the given type. Redis needs WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.redisClient, cfg.redisTTL), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
