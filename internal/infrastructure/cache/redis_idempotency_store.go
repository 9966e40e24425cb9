package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duka/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyPrefix = "duka:idempotency:"

// pendingMarker is the value of a reserved key without a response
const pendingMarker = "pending"

// NewRedisClient connects to redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisIdempotencyStore implements IdempotencyStore using Redis, so that
// several API instances share the same replay state.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on an existing client
func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve claims the key with SETNX
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Complete stores the response as JSON
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode stored response: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

// Lookup reads the stored response
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, key string) (*StoredResponse, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pendingMarker {
		return nil, ErrRequestInProgress
	}
	var resp StoredResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode stored response: %w", err)
	}
	return &resp, nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}

// Close is a no-op; the client is owned by the caller
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
