package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "watchdog:cooldown:"

// CooldownStore implements domain.CooldownTracker on Redis. SET NX PX
// is the atomic check-and-reserve: it succeeds only when the key is
// absent, and a failed attempt never touches the existing expiry, so
// expiry stays monotone per key. Shared state lives in Redis, which
// makes the window hold across instances.
type CooldownStore struct {
	rdb *goredis.Client
}

func NewCooldownStore(rdb *goredis.Client) *CooldownStore {
	return &CooldownStore{rdb: rdb}
}

// CheckAndReserve reports whether the caller may alert for key, and
// reserves the window when it may.
func (s *CooldownStore) CheckAndReserve(ctx context.Context, key string, window time.Duration) (bool, error) {
	reserved, err := s.rdb.SetNX(ctx, cooldownKeyPrefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve cooldown for %s: %w", key, err)
	}
	return reserved, nil
}

// Remaining returns the time left on a key's window, or zero when the
// key is expired or absent.
func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, cooldownKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown TTL for %s: %w", key, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
