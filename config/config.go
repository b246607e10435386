package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"task-notifier/component"
)

// Config is read from the environment.
type Config struct {
	Addr      string `env:"TASK_NOTIFIER_ADDR" envDefault:":8080"`
	DBPath    string `env:"TASK_NOTIFIER_DB" envDefault:"data.db"`
	RedisAddr string `env:"TASK_NOTIFIER_REDIS_ADDR" envDefault:"localhost:6379"`
	JWTSecret string `env:"TASK_NOTIFIER_JWT_SECRET" envDefault:"your-secret-key"`

	LogFile  string `env:"TASK_NOTIFIER_LOG_FILE" envDefault:"logs/app.log"`
	LogLevel string `env:"TASK_NOTIFIER_LOG_LEVEL" envDefault:"info"`

	Workers  int           `env:"TASK_NOTIFIER_WORKERS" envDefault:"5"`
	CacheTTL time.Duration `env:"TASK_NOTIFIER_CACHE_TTL" envDefault:"5m"`

	RateLimit  int           `env:"TASK_NOTIFIER_RATE_LIMIT" envDefault:"100"`
	RateWindow time.Duration `env:"TASK_NOTIFIER_RATE_WINDOW" envDefault:"1h"`

	AnnouncementID    string `env:"TASK_NOTIFIER_ANNOUNCEMENT_ID"`
	AnnouncementTitle string `env:"TASK_NOTIFIER_ANNOUNCEMENT_TITLE"`
	AnnouncementBody  string `env:"TASK_NOTIFIER_ANNOUNCEMENT_BODY"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("TASK_NOTIFIER_WORKERS must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}

func (c *Config) Announcement() component.Announcement {
	return component.Announcement{
		ID:    c.AnnouncementID,
		Title: c.AnnouncementTitle,
		Body:  c.AnnouncementBody,
	}
}
