package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"logo-quiz-service/internal/domain"
)

// LocalCache keeps finished scores in Redis as the fallback cache.
// Each record is stored as JSON under its own key, never overwriting an existing one:
//
//	SET score:{timestamp} {"name":...,"email":...,"score":...,"timestamp":...} NX
type LocalCache struct {
	client *redis.Client
}

func NewLocalCache(client *redis.Client) *LocalCache {
	return &LocalCache{client: client}
}

func (c *LocalCache) Put(ctx context.Context, rec domain.ScoreRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	key := domain.LocalCacheKey(rec.Timestamp)
	ok, err := c.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCacheKeyTaken, key)
	}
	return nil
}

// LoadAll returns cached records ordered by creation time. Entries that fail to
// decode are skipped.
func (c *LocalCache) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, domain.LocalCacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan scores: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyTimestamp(keys[i]) < keyTimestamp(keys[j])
	})

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget scores: %w", err)
	}
	records := make([]domain.ScoreRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			slog.Warn("skipping unreadable cached score", "key", keys[i], "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func keyTimestamp(key string) int64 {
	ts, _ := strconv.ParseInt(strings.TrimPrefix(key, domain.LocalCacheKeyPrefix), 10, 64)
	return ts
}
