// Package config loads process configuration from the environment and new
// campaign definitions from YAML.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the campaign server's process configuration.
type Config struct {
	Seed        int64  `env:"FRONTLINE_SEED" envDefault:"42"`
	DBPath      string `env:"FRONTLINE_DB_PATH" envDefault:"data/frontline.db"`
	SnapshotDir string `env:"FRONTLINE_SNAPSHOT_DIR" envDefault:"data/snapshots"`
	APIPort     int    `env:"FRONTLINE_API_PORT" envDefault:"8080"`
	AdminKey    string `env:"FRONTLINE_ADMIN_KEY"` // Empty disables POST endpoints
	LogLevel    string `env:"FRONTLINE_LOG_LEVEL" envDefault:"info"`

	// Optional files; the embedded defaults are used when empty.
	TheaterPath  string `env:"FRONTLINE_THEATER"`
	FactionsPath string `env:"FRONTLINE_FACTIONS"`
	CampaignPath string `env:"FRONTLINE_CAMPAIGN"`

	// Extra browser origins allowed by CORS; localhost dev servers always are.
	CORSOrigins []string `env:"FRONTLINE_CORS_ORIGINS" envSeparator:","`

	// Turn endpoint rate limit.
	TurnRateLimit  int           `env:"FRONTLINE_TURN_RATE_LIMIT" envDefault:"6"`
	TurnRateWindow time.Duration `env:"FRONTLINE_TURN_RATE_WINDOW" envDefault:"1m"`
}

// TurnbotConfig configures the turn steward.
type TurnbotConfig struct {
	APIURL          string        `env:"FRONTLINE_API_URL" envDefault:"http://localhost:8080"`
	AdminKey        string        `env:"FRONTLINE_ADMIN_KEY,required"`
	Interval        time.Duration `env:"FRONTLINE_TURN_INTERVAL" envDefault:"10m"`
	ForceNoRecovery bool          `env:"FRONTLINE_FORCE_NO_RECOVERY"`
	MaxTurns        int           `env:"FRONTLINE_MAX_TURNS"` // 0 = until the campaign ends
	LogLevel        string        `env:"FRONTLINE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Seed == 0 {
		return Config{}, fmt.Errorf("FRONTLINE_SEED must be nonzero")
	}
	if cfg.TurnRateLimit <= 0 {
		return Config{}, fmt.Errorf("FRONTLINE_TURN_RATE_LIMIT must be positive, is %d", cfg.TurnRateLimit)
	}
	return cfg, nil
}

// LoadTurnbot reads the steward configuration from the environment.
func LoadTurnbot() (TurnbotConfig, error) {
	var cfg TurnbotConfig
	if err := ParseEnv(&cfg); err != nil {
		return TurnbotConfig{}, err
	}
	if cfg.Interval <= 0 {
		return TurnbotConfig{}, fmt.Errorf("FRONTLINE_TURN_INTERVAL must be positive, is %s", cfg.Interval)
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
