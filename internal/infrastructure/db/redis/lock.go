package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
)

const (
	lockTTL   = 10 * time.Second
	lockWait  = 3 * time.Second
	lockRetry = 50 * time.Millisecond
)

// unlockScript deletes the lock only while it still carries our token, so an
// expired lock taken over by another holder is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements ports.Locker with SET NX PX and a token per holder.
// Key format: storefront:lock:<name>
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker creates a Locker. The lock expires after ttl if its holder dies;
// a zero ttl falls back to 10 seconds.
func NewLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = lockTTL
	}
	return &Locker{client: client, ttl: ttl, wait: lockWait, log: log}
}

func (l *Locker) Lock(ctx context.Context, name string) (func(), error) {
	key := lockKey(name)
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("lock %s: %w", name, domain.ErrRequestInFlight)
			}
			return nil, fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			return func() { l.unlock(ctx, key, token) }, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("lock %s: %w", name, domain.ErrRequestInFlight)
		case <-time.After(lockRetry):
		}
	}
}

func (l *Locker) unlock(ctx context.Context, key, token string) {
	if err := unlockScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
	}
}

func lockKey(name string) string {
	return keyPrefix + "lock:" + name
}
