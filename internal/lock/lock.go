// Package lock serializes multi-step mutations across API instances.
//
// Only banner activation needs it: its two updates must not interleave with
// another activation. Single-document updates are atomic in the store and
// never take a lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrLockNotAcquired means another holder owns the lock.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker runs fn while holding the named lock.
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Noop runs fn without coordination. Used when no Redis is configured.
type Noop struct{}

func (Noop) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const keyPrefix = "diagnosia:lock:"

// RedisLocker keeps one key per lock name. The key holds a random owner
// token and expires after ttl, so a crashed holder frees the lock on its own.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// WithLock fails fast with ErrLockNotAcquired instead of queueing. fn runs
// with a context bounded by the lock ttl.
func (l *RedisLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	key := keyPrefix + name
	owner := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", name, err)
	}
	if !acquired {
		return ErrLockNotAcquired
	}
	defer l.release(context.WithoutCancel(ctx), key, owner)

	held, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(held)
}

// compareAndDelete removes the key only while it still holds our token; an
// expired lock may already belong to someone else.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) release(ctx context.Context, key, owner string) {
	n, err := compareAndDelete.Run(ctx, l.client, []string{key}, owner).Int()
	switch {
	case err != nil && !errors.Is(err, redis.Nil):
		zerolog.Ctx(ctx).Error().Err(err).Str("lock", key).Msg("release lock")
	case n == 0:
		zerolog.Ctx(ctx).Warn().Str("lock", key).Msg("lock expired before release")
	}
}

// NewRedisClient builds a client from parsed URL options and pings it.
// Timeouts and pool sizes the URL left unset get service defaults.
func NewRedisClient(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	if opts == nil {
		return nil, errors.New("redis options are nil")
	}
	o := *opts
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 2 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 2 * time.Second
	}
	if o.PoolSize == 0 {
		o.PoolSize = 10
	}
	rdb := redis.NewClient(&o)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return rdb, nil
}
