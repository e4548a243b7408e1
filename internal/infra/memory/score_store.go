package memory

import (
	"context"
	"fmt"
	"sync"

	"logo-quiz-service/internal/domain"
)

// ScoreStore is an in-memory app.ScoreStore, used when no database is configured.
// Records keep insertion order.
type ScoreStore struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreStore(seed ...domain.ScoreRecord) *ScoreStore {
	return &ScoreStore{records: append([]domain.ScoreRecord(nil), seed...)}
}

func (s *ScoreStore) Insert(_ context.Context, rec domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *ScoreStore) LoadAll(_ context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *ScoreStore) FindByIdentity(_ context.Context, name, email string) (domain.ScoreRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Name == name && rec.Email == email {
			return rec, true, nil
		}
	}
	return domain.ScoreRecord{}, false, nil
}

// UpdateScore raises the score of the first record matching rec's (name, email).
func (s *ScoreStore) UpdateScore(_ context.Context, rec domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].Name == rec.Name && s.records[i].Email == rec.Email {
			if rec.Score > s.records[i].Score {
				s.records[i].Score = rec.Score
			}
			return nil
		}
	}
	return nil
}

// LocalCache is an in-memory app.LocalScoreCache keyed like the on-disk ones.
type LocalCache struct {
	mu      sync.RWMutex
	keys    []string
	entries map[string]domain.ScoreRecord
}

func NewLocalCache() *LocalCache {
	return &LocalCache{entries: make(map[string]domain.ScoreRecord)}
}

func (c *LocalCache) Put(_ context.Context, rec domain.ScoreRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := domain.LocalCacheKey(rec.Timestamp)
	if _, ok := c.entries[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCacheKeyTaken, key)
	}
	c.keys = append(c.keys, key)
	c.entries[key] = rec
	return nil
}

func (c *LocalCache) LoadAll(_ context.Context) ([]domain.ScoreRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ScoreRecord, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.entries[key])
	}
	return out, nil
}
