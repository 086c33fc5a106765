// Package cooldown implements the per-key alert suppression window.
//
// Check-then-reserve is a single atomic operation per key: two
// concurrent callers for the same key can never both be told to
// proceed within one window. Keys that were never reserved count as
// expired.
package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryTracker is the in-process CooldownTracker used in
// single-instance mode. The Redis-backed tracker in internal/redis
// serves multi-instance deployments.
type MemoryTracker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	clock   clockwork.Clock
}

func NewMemoryTracker(clock clockwork.Clock) *MemoryTracker {
	return &MemoryTracker{
		expires: make(map[string]time.Time),
		clock:   clock,
	}
}

// CheckAndReserve reports whether the caller may alert for key. When it
// may, the key's expiry is moved to now + window under the same lock,
// so no second caller can slip through before the reservation lands.
func (t *MemoryTracker) CheckAndReserve(_ context.Context, key string, window time.Duration) (bool, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if expiry, ok := t.expires[key]; ok && now.Before(expiry) {
		return false, nil
	}

	t.expires[key] = now.Add(window)
	return true, nil
}

// Expiry returns the current expiry for key, if any reservation exists.
func (t *MemoryTracker) Expiry(key string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiry, ok := t.expires[key]
	return expiry, ok
}

// Prune drops expired records. Called periodically so long-running
// processes do not accumulate one entry per key forever.
func (t *MemoryTracker) Prune() int {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, expiry := range t.expires {
		if !now.Before(expiry) {
			delete(t.expires, key)
			removed++
		}
	}
	return removed
}
