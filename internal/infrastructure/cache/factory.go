package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory picks the idempotency store implementation
// from configuration: Redis for multi-instance deployments, the
// in-memory map for single instances and tests.
type IdempotencyStoreFactory struct {
	kind             string
	redisCfg         config.RedisConfig
	log              *zap.Logger
	fallbackToMemory bool
}

// IdempotencyStoreFactoryOption customizes factory behavior.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger attaches the application logger.
func WithLogger(log *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.log = log }
}

// WithInMemoryFallback controls what happens when Redis is configured
// but unreachable: fall back to the in-memory store (the default) or
// fail startup.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.fallbackToMemory = allow }
}

// NewIdempotencyStoreFactory builds a factory from the idempotency
// and Redis sections of the configuration.
func NewIdempotencyStoreFactory(cfg config.IdempotencyConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		kind:             cfg.Store,
		redisCfg:         redisCfg,
		log:              zap.NewNop(),
		fallbackToMemory: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. A Redis outage degrades
// to in-memory unless the fallback is disabled; in-memory state is
// per process, so duplicate detection can miss across instances.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	if f.kind != "redis" {
		f.log.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     f.redisCfg.Host,
		Port:     f.redisCfg.Port,
		Password: f.redisCfg.Password,
		DB:       f.redisCfg.DB,
	})
	if err == nil {
		f.log.Info("using Redis idempotency store",
			zap.String("host", f.redisCfg.Host),
			zap.Int("port", f.redisCfg.Port),
		)
		return store, nil
	}

	if !f.fallbackToMemory {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.log.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
