// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvBotToken  = "BOT_TOKEN"
	EnvRedisURL  = "REDIS_URL"
	EnvRedisPass = "REDIS_PASSWORD"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"` // polling | webhook (future)
	Workers  int    `yaml:"workers"` // polling workers
	Language string `yaml:"language"`
	// RateLimit is the number of messages a chat may send per RateWindow; 0 disables it.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // ops server (/health, /metrics); 0 disables it
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.URL) != "" }

type DownloadConfig struct {
	Dir        string `yaml:"dir"`
	Workers    int    `yaml:"workers"`
	YtDlpPath  string `yaml:"ytdlp_path"`
	Install    bool   `yaml:"install"` // fetch a yt-dlp binary at startup when missing
	QueueDepth int    `yaml:"queue_depth"`
}

type SchedulerConfig struct {
	CleanupCron string        `yaml:"cleanup_cron"`
	Retention   time.Duration `yaml:"retention"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Redis     RedisConfig     `yaml:"redis"`
	Download  DownloadConfig  `yaml:"download"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies env overrides and defaults, and validates.
// A missing file is not an error when the token comes from the environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; real deployments inject the secret directly.
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBotToken)); v != "" {
		cfg.Bot.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv(EnvRedisPass); v != "" {
		cfg.Redis.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Bot.RateWindow <= 0 {
		cfg.Bot.RateWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 30 * time.Minute
	}
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = "downloads"
	}
	if cfg.Download.Workers <= 0 {
		cfg.Download.Workers = 4
	}
	if cfg.Download.QueueDepth <= 0 {
		cfg.Download.QueueDepth = cfg.Download.Workers * 4
	}
	if cfg.Scheduler.CleanupCron == "" {
		cfg.Scheduler.CleanupCron = "@every 30m"
	}
	if cfg.Scheduler.Retention <= 0 {
		cfg.Scheduler.Retention = 2 * time.Hour
	}
}

// Validate performs minimal validation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return fmt.Errorf("bot.token is required (or set %s)", EnvBotToken)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port out of range: %d", c.Admin.Port)
	}
	if c.Bot.RateLimit < 0 {
		return errors.New("bot.rate_limit must not be negative")
	}
	return nil
}
