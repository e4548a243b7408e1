package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logo-quiz-service/internal/domain"
)

// ScoreStore is the durable, out-of-process score store (Postgres, memory, ...).
type ScoreStore interface {
	Insert(ctx context.Context, rec domain.ScoreRecord) error
	LoadAll(ctx context.Context) ([]domain.ScoreRecord, error)
	FindByIdentity(ctx context.Context, name, email string) (domain.ScoreRecord, bool, error)
	UpdateScore(ctx context.Context, rec domain.ScoreRecord) error
}

// LocalScoreCache is the fallback cache keyed by domain.LocalCacheKey.
type LocalScoreCache interface {
	Put(ctx context.Context, rec domain.ScoreRecord) error
	LoadAll(ctx context.Context) ([]domain.ScoreRecord, error)
}

// ScoreGateway persists finished sessions and reads back score history,
// falling back to the local cache when the durable store is unavailable.
type ScoreGateway struct {
	store  ScoreStore
	local  LocalScoreCache
	policy domain.UpsertPolicy
}

// NewScoreGateway wires a gateway. Either backend may be nil.
func NewScoreGateway(store ScoreStore, local LocalScoreCache, policy domain.UpsertPolicy) *ScoreGateway {
	if policy == "" {
		policy = domain.UpdateIfHigher
	}
	return &ScoreGateway{store: store, local: local, policy: policy}
}

// Policy reports the configured upsert policy.
func (g *ScoreGateway) Policy() domain.UpsertPolicy {
	return g.policy
}

// Save writes rec to the local cache and then to the durable store. Errors wrap
// domain.ErrStore; a local cache failure does not prevent the durable write.
func (g *ScoreGateway) Save(ctx context.Context, rec domain.ScoreRecord) error {
	var localErr error
	if g.local != nil {
		if err := g.local.Put(ctx, rec); err != nil {
			localErr = fmt.Errorf("%w: local cache: %v", domain.ErrStore, err)
		}
	}
	if g.store == nil {
		return localErr
	}
	if err := g.saveDurable(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return localErr
}

func (g *ScoreGateway) saveDurable(ctx context.Context, rec domain.ScoreRecord) error {
	if g.policy == domain.InsertOnly {
		return g.store.Insert(ctx, rec)
	}

	existing, found, err := g.store.FindByIdentity(ctx, rec.Name, rec.Email)
	if err != nil {
		return fmt.Errorf("find player: %w", err)
	}
	if !found {
		return g.store.Insert(ctx, rec)
	}
	if rec.Score > existing.Score {
		return g.store.UpdateScore(ctx, rec)
	}
	return nil
}

// LoadAll returns every stored record. It reads the durable store first and
// falls back to the local cache when that fails or comes back empty.
func (g *ScoreGateway) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	if g.store != nil {
		records, err := g.store.LoadAll(ctx)
		if err == nil && len(records) > 0 {
			return records, nil
		}
		if err != nil {
			slog.Warn("loading scores from durable store, using local cache", "err", err)
		}
	}
	if g.local == nil {
		return nil, nil
	}
	records, err := g.local.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: local cache: %v", domain.ErrStore, err)
	}
	return records, nil
}

// MonotonicClock hands out strictly increasing millisecond timestamps so that
// local cache keys never collide within a process.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

// Stamp returns the current Unix milliseconds, bumped past the previous stamp if needed.
func (c *MonotonicClock) Stamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}
