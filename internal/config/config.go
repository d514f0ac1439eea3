package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// LogConfig drives obslog.
type LogConfig struct {
	Level   string `env:"LOG_LEVEL,default=info"`
	Format  string `env:"LOG_FORMAT,default=console"`
	Console bool   `env:"LOG_TO_CONSOLE,default=true"`
	File    string `env:"LOG_FILE"`
	Caller  bool   `env:"LOG_CALLER,default=false"`
}

type AppConfig struct {
	Addr string `env:"GEOBLUFF_ADDR,default=:8000"`

	CountriesFile  string `env:"GEOBLUFF_COUNTRIES_FILE"`
	CategoriesFile string `env:"GEOBLUFF_CATEGORIES_FILE"`
	MessagesDir    string `env:"GEOBLUFF_MESSAGES_DIR"`

	Language        string        `env:"GEOBLUFF_LANGUAGE,default=fr"`
	DefaultHandSize int           `env:"GEOBLUFF_DEFAULT_HAND_SIZE,default=7"`
	SessionTTL      time.Duration `env:"GEOBLUFF_SESSION_TTL,default=0s"`
	PresenceTimeout time.Duration `env:"GEOBLUFF_PRESENCE_TIMEOUT,default=6s"`

	RedisURL string `env:"REDIS_URL"`

	Log LogConfig
}

// Load reads the environment. Unset variables keep their defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims string settings.
func (c *AppConfig) Normalize() {
	c.Addr = strings.TrimSpace(c.Addr)
	c.CountriesFile = strings.TrimSpace(c.CountriesFile)
	c.CategoriesFile = strings.TrimSpace(c.CategoriesFile)
	c.MessagesDir = strings.TrimSpace(c.MessagesDir)
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Log.File = strings.TrimSpace(c.Log.File)
}

func (c *AppConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("GEOBLUFF_ADDR must not be empty")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("GEOBLUFF_SESSION_TTL must not be negative: %s", c.SessionTTL)
	}
	if c.PresenceTimeout <= 0 {
		return fmt.Errorf("GEOBLUFF_PRESENCE_TIMEOUT must be positive: %s", c.PresenceTimeout)
	}
	if c.DefaultHandSize < 0 {
		return fmt.Errorf("GEOBLUFF_DEFAULT_HAND_SIZE must not be negative: %d", c.DefaultHandSize)
	}
	return nil
}
