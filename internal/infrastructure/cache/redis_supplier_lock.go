package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockPrefix   = "dropship:lock:supplier:"
	defaultLockTTL      = 30 * time.Minute
	defaultPollInterval = 250 * time.Millisecond
)

// ErrLockLost is returned when a held lock expired before release
var ErrLockLost = errors.New("cache: supplier lock expired before release")

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSupplierLocker serializes work per supplier across process instances.
// The lock is a SET NX key with a TTL so a crashed holder cannot block forever.
type RedisSupplierLocker struct {
	client       *redis.Client
	keyPrefix    string
	ttl          time.Duration
	pollInterval time.Duration
	onRelease    func(error)
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisSupplierLocker creates a locker over an existing Redis client
func NewRedisSupplierLocker(client *redis.Client, ttl time.Duration) *RedisSupplierLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisSupplierLocker{
		client:       client,
		keyPrefix:    defaultLockPrefix,
		ttl:          ttl,
		pollInterval: defaultPollInterval,
		onRelease:    func(error) {},
	}
}

// Lock polls SET NX until the key is ours or ctx is done
func (l *RedisSupplierLocker) Lock(ctx context.Context, supplierID uuid.UUID) (func(), error) {
	key := l.keyPrefix + supplierID.String()
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire supplier lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// release with a fresh context so a cancelled caller still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
		switch {
		case err != nil:
			l.onRelease(fmt.Errorf("failed to release supplier lock: %w", err))
		case n == 0:
			l.onRelease(ErrLockLost)
		}
	}, nil
}

// Close closes the Redis client
func (l *RedisSupplierLocker) Close() error {
	return l.client.Close()
}

var _ dropship.SupplierLocker = (*RedisSupplierLocker)(nil)
