package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCartStorage keeps cart slots in Redis so they survive restarts and are
// shared between instances.
type RedisCartStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStorage creates a RedisCartStorage. A zero ttl keeps slots forever.
func NewRedisCartStorage(client *redis.Client, ttl time.Duration) *RedisCartStorage {
	return &RedisCartStorage{
		client: client,
		ttl:    ttl,
	}
}

// Load reads the slot under key.
func (s *RedisCartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Save writes the slot under key and refreshes its TTL.
func (s *RedisCartStorage) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
