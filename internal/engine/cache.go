package engine

import (
	"sync"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

// ruleCacheEntry holds one user's rules with an expiry.
type ruleCacheEntry struct {
	expiry time.Time
	rules  []model.CategorizationRule
}

// ruleCache provides thread-safe per-user caching of store-backed rules.
// It must be invalidated synchronously with any write for the same user,
// or the rule layer would keep serving stale confident matches.
type ruleCache struct {
	entries map[string]ruleCacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

func newRuleCache(ttl time.Duration) *ruleCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &ruleCache{
		entries: make(map[string]ruleCacheEntry),
		ttl:     ttl,
	}
}

func (c *ruleCache) get(userID string) ([]model.CategorizationRule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[userID]
	if !exists || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.rules, true
}

func (c *ruleCache) set(userID string, rules []model.CategorizationRule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = ruleCacheEntry{
		rules:  rules,
		expiry: time.Now().Add(c.ttl),
	}
}

func (c *ruleCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
