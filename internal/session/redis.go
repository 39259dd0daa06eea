package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ccastromar/meetbot/internal/logx"
)

const sessionKeyPrefix = "session:"

// RedisStore shares sessions between replicas. Keys expire after the TTL
// without access, so it is a cache rather than durable storage.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// createAttempts bounds how often Create re-reads the key when a chat
// update lands between its read and its write.
const createAttempts = 3

func (s *RedisStore) Create(ctx context.Context, data *Session) error {
	key := s.key(data.ID)

	var err error
	for i := 0; i < createAttempts; i++ {
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			version, err := storedVersion(ctx, tx, key)
			if err != nil {
				return err
			}

			next := data.Clone()
			now := time.Now()
			next.CreatedAt = now
			next.UpdatedAt = now
			next.Version = version + 1

			val, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, val, s.ttl)
				return nil
			})
			if err != nil {
				return err
			}
			data.CreatedAt = next.CreatedAt
			data.UpdatedAt = next.UpdatedAt
			data.Version = next.Version
			return nil
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("create session %s: %w", data.ID, err)
}

// storedVersion returns the Version under key, or 0 when it is absent.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	val, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(val, &stored); err != nil {
		return 0, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return stored.Version, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data Session
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		logx.Warn("Store", "ttl refresh failed for %s: %v", id, err)
	}
	return &data, nil
}

// Update uses WATCH/MULTI/EXEC; a concurrent writer between the read and
// the exec also counts as a version conflict.
func (s *RedisStore) Update(ctx context.Context, data *Session) error {
	key := s.key(data.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored Session
		if err := json.Unmarshal(val, &stored); err != nil {
			return fmt.Errorf("unmarshal session %s: %w", data.ID, err)
		}
		if stored.Version != data.Version {
			return ErrVersionConflict
		}

		next := data.Clone()
		next.Version++
		next.UpdatedAt = time.Now()

		newVal, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		data.Version = next.Version
		data.UpdatedAt = next.UpdatedAt
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}
