package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/catalog"
	"logo-quiz-service/internal/config"
	"logo-quiz-service/internal/domain"
	"logo-quiz-service/internal/infra/memory"
	pgstore "logo-quiz-service/internal/infra/postgres"
	redisstore "logo-quiz-service/internal/infra/redis"
	"logo-quiz-service/internal/infra/sqlite"
)

// buildService wires the catalog, stores and game service from cfg. The returned
// cleanup drains pending score writes and releases connections.
func buildService(ctx context.Context, cfg config.Config) (*app.GameService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	policy, err := domain.ParseUpsertPolicy(cfg.Game.UpsertPolicy)
	if err != nil {
		return nil, cleanup, err
	}

	cat, skipped, err := catalog.Load(cfg.Game.Catalog)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading catalog: %w", err)
	}
	if cat.Len() == 0 {
		slog.Warn("question catalog is empty; games cannot start", "path", cfg.Game.Catalog)
	}
	slog.Info("catalog loaded", "questions", cat.Len(), "skipped", skipped)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var store app.ScoreStore = memory.NewScoreStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		store = pgstore.NewScoreStore(pool)
	}
	if ttl := config.TTLDuration(cfg.Leaderboard.CacheTTL, 0); ttl > 0 {
		store = memory.NewCachedScoreStore(store, ttl)
	}

	var local app.LocalScoreCache
	switch {
	case cfg.SQLite.Path != "":
		cache, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = cache.Close() })
		local = cache
	case redisClient != nil:
		local = redisstore.NewLocalCache(redisClient)
	default:
		local = memory.NewLocalCache()
	}

	// idle eviction and the Redis liveness marker share one TTL
	sessionTTL := config.TTLDuration(cfg.Game.SessionTTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	var games app.GameRepository
	if redisClient != nil {
		games = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		games = memory.NewSessionStore()
	}

	opts := app.DefaultServiceOptions()
	if d := config.TTLDuration(cfg.Game.Duration, 0); d >= time.Second {
		opts.Countdown = int(d / time.Second)
	}
	opts.FeedbackDelay = config.TTLDuration(cfg.Game.FeedbackDelay, opts.FeedbackDelay)
	if cfg.Game.LeaderboardSize > 0 {
		opts.LeaderboardSize = cfg.Game.LeaderboardSize
	}
	opts.IdleTimeout = sessionTTL
	opts.EndedRetention = config.TTLDuration(cfg.Game.EndedRetention, opts.EndedRetention)

	service := app.NewGameService(cat, games, app.NewScoreGateway(store, local, policy), opts)
	// drain before the stores close
	closers = append(closers, service.Wait)
	return service, cleanup, nil
}

// defaultMode resolves the configured game mode.
func defaultMode(cfg config.Config) (domain.Mode, error) {
	return domain.ParseMode(cfg.Game.Mode)
}
