package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level" env:"LEVEL"`
	} `yaml:"log" envPrefix:"LOG_"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ADDR"`
		Password string `yaml:"password" env:"PASSWORD"`
		DB       int    `yaml:"db" env:"DB"`
		TTL      string `yaml:"ttl" env:"TTL"`
	} `yaml:"redis" envPrefix:"REDIS_"`
	Postgres struct {
		URL string `yaml:"url" env:"URL"`
	} `yaml:"postgres" envPrefix:"POSTGRES_"`
	SQLite struct {
		Path string `yaml:"path" env:"PATH"`
	} `yaml:"sqlite" envPrefix:"SQLITE_"`
	Game struct {
		Mode            string `yaml:"mode" env:"MODE"`
		Duration        string `yaml:"duration" env:"DURATION"`
		FeedbackDelay   string `yaml:"feedback_delay" env:"FEEDBACK_DELAY"`
		Catalog         string `yaml:"catalog" env:"CATALOG"`
		UpsertPolicy    string `yaml:"upsert_policy" env:"UPSERT_POLICY"`
		LeaderboardSize int    `yaml:"leaderboard_size" env:"LEADERBOARD_SIZE"`
		SessionTTL      string `yaml:"session_ttl" env:"SESSION_TTL"`
		EndedRetention  string `yaml:"ended_retention" env:"ENDED_RETENTION"`
	} `yaml:"game" envPrefix:"GAME_"`
	Leaderboard struct {
		CacheTTL string `yaml:"cache_ttl" env:"CACHE_TTL"`
	} `yaml:"leaderboard" envPrefix:"LEADERBOARD_"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; the environment and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LogLevel maps the configured level to slog, defaulting to info.
func (c Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
