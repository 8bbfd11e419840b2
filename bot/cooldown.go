package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cooldownCleanupThreshold = 500
	cooldownMaxIdleAge       = 10 * time.Minute
)

type cooldownEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Cooldown is a per-user command limiter that prunes idle users inline.
// A zero period disables it.
type Cooldown struct {
	mu      sync.Mutex
	users   map[string]*cooldownEntry
	limit   rate.Limit
	enabled bool
	now     func() time.Time
}

// NewCooldown allows one command per user every period
func NewCooldown(period time.Duration) *Cooldown {
	c := &Cooldown{
		users:   make(map[string]*cooldownEntry),
		enabled: period > 0,
		now:     time.Now,
	}
	if c.enabled {
		c.limit = rate.Every(period)
	}
	return c
}

// Allow consumes the user's token. When the user is still cooling down it
// returns false and how long until the next command is accepted.
func (c *Cooldown) Allow(userID string) (bool, time.Duration) {
	if c == nil || !c.enabled {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.users) > cooldownCleanupThreshold {
		cutoff := now.Add(-cooldownMaxIdleAge)
		for k, e := range c.users {
			if e.lastSeen.Before(cutoff) {
				delete(c.users, k)
			}
		}
	}

	e, exists := c.users[userID]
	if !exists {
		e = &cooldownEntry{limiter: rate.NewLimiter(c.limit, 1)}
		c.users[userID] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (c *Cooldown) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}
