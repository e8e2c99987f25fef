// Package config loads server settings from the environment and the game
// rules from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the game server.
type Config struct {
	Port           string   `env:"PORT" envDefault:"3001"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3001"`
	RulesFile      string   `env:"RULES_FILE"`

	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"truthbid"`
	DatabaseURL       string `env:"DATABASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"15m"`
	MaxSessionAge time.Duration `env:"MAX_SESSION_AGE" envDefault:"2h"`
	MaxIdle       time.Duration `env:"MAX_IDLE" envDefault:"30m"`
	NewRoundDelay time.Duration `env:"NEW_ROUND_DELAY" envDefault:"3s"`

	Rules game.Rules
}

// Load reads .env (if present), parses the environment and loads the rules
// file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	return FromEnv()
}

// FromEnv parses the current environment without reading .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects durations that would disable timing.
func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.MaxSessionAge <= 0 || c.MaxIdle <= 0 {
		return fmt.Errorf("MAX_SESSION_AGE and MAX_IDLE must be positive")
	}
	if c.NewRoundDelay < 0 {
		return fmt.Errorf("NEW_ROUND_DELAY must not be negative, got %s", c.NewRoundDelay)
	}
	return nil
}

// LoadRules reads rule overrides from path. An empty path or a missing file
// yields the default rules.
func LoadRules(path string) (game.Rules, error) {
	rules := game.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("rules file not found, using defaults")
		return rules, nil
	}
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}
