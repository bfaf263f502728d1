package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

type Config struct {
	// Web Server
	WebBind         string        `env:"WEB_BIND" envDefault:"0.0.0.0:3000"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Discord Bot (disabled when empty)
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Settlement archive (disabled when empty)
	DatabaseURL    string        `env:"DATABASE_URL"`
	ArchiveTimeout time.Duration `env:"ARCHIVE_TIMEOUT" envDefault:"2s"`

	// Locale used to format amounts in chat replies
	Locale string `env:"LOCALE" envDefault:"ja"`
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.WebBind) == "" {
		return fmt.Errorf("WEB_BIND is required")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("LOCALE %q is not a valid language tag: %w", c.Locale, err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// LanguageTag returns the parsed LOCALE, falling back to Japanese.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Japanese
	}
	return tag
}

// DiscordEnabled reports whether the chat transport should start.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

// ArchiveEnabled reports whether closed settlements are written to Postgres.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}
