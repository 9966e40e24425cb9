package cache

import (
	"context"
	"fmt"

	"github.com/duka/backend/internal/application/reminder"
	"github.com/duka/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends bundles the shared-state helpers built from configuration
type Backends struct {
	Idempotency IdempotencyStore
	Locker      reminder.Locker
	client      *redis.Client
}

// Close releases the stores and the redis connection
func (b *Backends) Close() error {
	if b.Idempotency != nil {
		_ = b.Idempotency.Close()
	}
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// Factory creates idempotency stores and lockers based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-process state when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InMemory returns process-local backends
func (f *Factory) InMemory() *Backends {
	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewLocalLocker(),
	}
}

// Create builds redis-backed helpers when redis is enabled and reachable.
// Otherwise it falls back to process-local ones if allowed.
func (f *Factory) Create(ctx context.Context) (*Backends, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store and local locks")
		return f.InMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store and locks", zap.String("addr", f.redisConfig.Addr()))
		return &Backends{
			Idempotency: NewRedisIdempotencyStore(client, ""),
			Locker:      NewRedisLocker(client),
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory state. "+
		"Reminders may be sent by more than one instance.",
		zap.Error(err),
	)
	return f.InMemory(), nil
}
