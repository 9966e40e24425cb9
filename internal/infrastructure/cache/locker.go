package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/duka/backend/internal/application/reminder"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements reminder.Locker with a redis lock, so only one
// instance runs a guarded job at a time.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a locker on an existing redis client
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain takes the lock without retrying
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, reminder.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// LocalLocker implements reminder.Locker within one process
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	now   func() time.Time
	token uint64
	owner map[string]uint64
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]time.Time),
		owner: make(map[string]uint64),
		now:   time.Now,
	}
}

// Obtain takes the lock unless an unexpired holder exists
func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt, ok := l.held[key]; ok && l.now().Before(expiresAt) {
		return nil, reminder.ErrLockNotObtained
	}
	l.token++
	token := l.token
	l.held[key] = l.now().Add(ttl)
	l.owner[key] = token

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.owner[key] == token {
			delete(l.held, key)
			delete(l.owner, key)
		}
		return nil
	}, nil
}

var (
	_ reminder.Locker = (*RedisLocker)(nil)
	_ reminder.Locker = (*LocalLocker)(nil)
)
