package learning

import (
	"sync"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

type patternsEntry struct {
	expiry   time.Time
	patterns []model.LearningPattern
}

type metricsEntry struct {
	expiry  time.Time
	metrics model.LearningMetrics
}

// userCache holds per-user learned patterns and derived metrics. Both are
// dropped together whenever new feedback lands for the user, so cached
// state never outlives a write.
type userCache struct {
	patterns map[string]patternsEntry
	metrics  map[string]metricsEntry
	ttl      time.Duration
	mu       sync.RWMutex
}

func newUserCache(ttl time.Duration) *userCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &userCache{
		patterns: make(map[string]patternsEntry),
		metrics:  make(map[string]metricsEntry),
		ttl:      ttl,
	}
}

func (c *userCache) getPatterns(userID string) ([]model.LearningPattern, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.patterns[userID]
	if !exists || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.patterns, true
}

func (c *userCache) setPatterns(userID string, patterns []model.LearningPattern) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.patterns[userID] = patternsEntry{
		patterns: patterns,
		expiry:   time.Now().Add(c.ttl),
	}
}

func (c *userCache) getMetrics(userID string) (model.LearningMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.metrics[userID]
	if !exists || time.Now().After(entry.expiry) {
		return model.LearningMetrics{}, false
	}
	return entry.metrics, true
}

func (c *userCache) setMetrics(userID string, metrics model.LearningMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics[userID] = metricsEntry{
		metrics: metrics,
		expiry:  time.Now().Add(c.ttl),
	}
}

func (c *userCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.patterns, userID)
	delete(c.metrics, userID)
}
