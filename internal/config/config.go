// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds every tunable of the server.
type Config struct {
	Port           string        `env:"PORT,default=8080"`
	DBPath         string        `env:"DB_PATH,default=euchre.db"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS,default=*"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	LogDevelopment bool          `env:"LOG_DEVELOPMENT,default=false,strict"`
	CleanupEvery   time.Duration `env:"CLEANUP_INTERVAL,default=1m,strict"`
	RoomMaxAge     time.Duration `env:"ROOM_MAX_AGE,default=1h,strict"`
	BotMaxSteps    int           `env:"BOT_MAX_STEPS,default=10,strict"`
	BotPolicy      string        `env:"BOT_POLICY,default=greedy"`
}

// Load decodes the environment. Unset variables take their defaults;
// malformed ones are an error.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CleanupEvery <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", c.CleanupEvery)
	}
	if c.RoomMaxAge <= 0 {
		return fmt.Errorf("ROOM_MAX_AGE must be positive, got %s", c.RoomMaxAge)
	}
	if c.BotMaxSteps <= 0 {
		return fmt.Errorf("BOT_MAX_STEPS must be positive, got %d", c.BotMaxSteps)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Logger builds the process logger: JSON in production, console output
// when LogDevelopment is set.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
