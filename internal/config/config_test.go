package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
  ttl: "5m"
game:
  mode: sequential
  duration: 45s
  upsert_policy: insert_only
  session_ttl: 2m
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("GAME_LEADERBOARD_SIZE", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port from yaml, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env override, got %q", cfg.Redis.Addr)
	}
	if cfg.Game.Mode != "sequential" || cfg.Game.UpsertPolicy != "insert_only" {
		t.Fatalf("unexpected game section %+v", cfg.Game)
	}
	if cfg.Game.LeaderboardSize != 5 {
		t.Fatalf("expected leaderboard size from env, got %d", cfg.Game.LeaderboardSize)
	}
	if got := TTLDuration(cfg.Game.Duration, time.Second); got != 45*time.Second {
		t.Fatalf("expected 45s, got %v", got)
	}
	if got := TTLDuration(cfg.Game.SessionTTL, time.Second); got != 2*time.Minute {
		t.Fatalf("expected session ttl 2m, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "" || cfg.Game.Mode != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level by default")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid, got %v", got)
	}
}

func TestLogLevel(t *testing.T) {
	var cfg Config
	cfg.Log.Level = "debug"
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
}
