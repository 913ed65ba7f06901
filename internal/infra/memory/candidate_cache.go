package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// CandidateLoader computes the ranked candidate list from the backing stores.
type CandidateLoader interface {
	LoadCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// CandidateCache caches the ranked candidate list with TTL so the read path
// does not re-join villagers, results, and selections on every request.
// Writers invalidate it explicitly after quiz completions and selection
// changes.
type CandidateCache struct {
	loader CandidateLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Candidate
	expiresAt time.Time
}

func NewCandidateCache(loader CandidateLoader, ttl time.Duration) *CandidateCache {
	return &CandidateCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Candidates returns the cached ranked list, refreshing it through the loader
// on expiry. Concurrent misses share one load.
func (c *CandidateCache) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	now := c.clock()

	c.mu.RLock()
	if c.cached != nil && c.expiresAt.After(now) {
		cached := c.cached
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("candidates", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.cached != nil && c.expiresAt.After(now) {
			cached := c.cached
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		candidates, err := c.loader.LoadCandidates(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = candidates
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Candidate), nil
}

// Invalidate drops the cached list so the next read recomputes it.
func (c *CandidateCache) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *CandidateCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
