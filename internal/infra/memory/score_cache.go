package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

const scoresKey = "scores"

// CachedScoreStore caches the full score history with a TTL to avoid hitting the
// durable store on every leaderboard view. Writes pass through and drop the cache.
// Stale reads within the TTL are acceptable for the leaderboard.
type CachedScoreStore struct {
	app.ScoreStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	cached    []domain.ScoreRecord
	loaded    bool
	expiresAt time.Time
	gen       uint64
}

func NewCachedScoreStore(store app.ScoreStore, ttl time.Duration) *CachedScoreStore {
	return &CachedScoreStore{
		ScoreStore: store,
		ttl:        ttl,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedScoreStore) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	if records, ok := c.lookup(); ok {
		return records, nil
	}

	result, err, _ := c.sf.Do(scoresKey, func() (interface{}, error) {
		if records, ok := c.lookup(); ok {
			return records, nil
		}

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		records, err := c.ScoreStore.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// a write since the load started makes this result stale
		if gen == c.gen {
			c.cached = records
			c.loaded = true
			c.expiresAt = c.clock().Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return copyRecords(result.([]domain.ScoreRecord)), nil
}

func (c *CachedScoreStore) Insert(ctx context.Context, rec domain.ScoreRecord) error {
	defer c.invalidate()
	return c.ScoreStore.Insert(ctx, rec)
}

func (c *CachedScoreStore) UpdateScore(ctx context.Context, rec domain.ScoreRecord) error {
	defer c.invalidate()
	return c.ScoreStore.UpdateScore(ctx, rec)
}

func (c *CachedScoreStore) lookup() ([]domain.ScoreRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	// an empty board is a valid cached result
	if !c.loaded || !c.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyRecords(c.cached), true
}

func (c *CachedScoreStore) invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()
}

func (c *CachedScoreStore) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyRecords(in []domain.ScoreRecord) []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, len(in))
	copy(out, in)
	return out
}
