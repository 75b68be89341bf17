package cache

import (
	"fmt"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Lock backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// LockerFactory creates supplier lockers based on configuration
type LockerFactory struct {
	syncConfig            config.SyncConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory locker when Redis is unavailable.
// Default is false: a multi-instance deployment must not silently lose mutual exclusion.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(syncCfg config.SyncConfig, redisCfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		syncConfig:  syncCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisLocker creates a Redis-based supplier locker
func (f *LockerFactory) CreateRedisLocker() (*RedisSupplierLocker, error) {
	client, err := NewRedisClient(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis supplier locker: %w", err)
	}

	locker := NewRedisSupplierLocker(client, f.syncConfig.LockTTL)
	locker.onRelease = func(err error) {
		f.logger.Warn("supplier lock release failed", zap.Error(err))
	}
	return locker, nil
}

// CreateLocker creates the locker named by sync.lock_backend
func (f *LockerFactory) CreateLocker() (dropship.SupplierLocker, error) {
	if f.syncConfig.LockBackend != BackendRedis {
		f.logger.Info("using in-memory supplier locker")
		return NewInMemorySupplierLocker(), nil
	}

	locker, err := f.CreateRedisLocker()
	if err == nil {
		f.logger.Info("using Redis supplier locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for supplier locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory supplier locker. "+
		"Syncs of the same supplier on different instances may overlap.",
		zap.Error(err),
	)
	return NewInMemorySupplierLocker(), nil
}
