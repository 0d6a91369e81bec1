// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Database      DatabaseConfig      `yaml:"database"`
	Collector     CollectorConfig     `yaml:"collector"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Retention     RetentionConfig     `yaml:"retention"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // postgres, memory
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// CollectorConfig defines the upstream catalog API settings.
type CollectorConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines upstream request rate limiting settings.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// MonitorConfig defines monitor job behavior.
type MonitorConfig struct {
	DefaultInterval time.Duration `yaml:"default_interval"`
	MinInterval     time.Duration `yaml:"min_interval"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

// RetentionConfig defines the snapshot retention sweep.
type RetentionConfig struct {
	Enabled  bool   `yaml:"enabled"`
	KeepLast int    `yaml:"keep_last"`
	Schedule string `yaml:"schedule"` // cron expression
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Backend  string         `yaml:"backend"` // telegram, noop
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig defines Telegram Bot API settings.
type TelegramConfig struct {
	Token   string        `yaml:"token"`
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyDatabaseDefaults(&cfg.Database)
	applyCollectorDefaults(&cfg.Collector)
	applyMonitorDefaults(&cfg.Monitor)
	applyRetentionDefaults(&cfg.Retention)
	applyNotificationsDefaults(&cfg.Notifications)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyStorageDefaults(s *StorageConfig) {
	if s.Backend == "" {
		s.Backend = "postgres"
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyCollectorDefaults(c *CollectorConfig) {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 1.0
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
}

func applyMonitorDefaults(m *MonitorConfig) {
	if m.DefaultInterval == 0 {
		m.DefaultInterval = time.Hour
	}
	if m.MinInterval == 0 {
		m.MinInterval = time.Minute
	}
	if m.RetryBackoff == 0 {
		m.RetryBackoff = time.Minute
	}
}

func applyRetentionDefaults(r *RetentionConfig) {
	if r.KeepLast == 0 {
		r.KeepLast = 30
	}
	if r.Schedule == "" {
		r.Schedule = "0 3 * * *"
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.Backend == "" {
		n.Backend = "noop"
	}
	if n.Telegram.Timeout == 0 {
		n.Telegram.Timeout = 10 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Storage.Backend {
	case "memory":
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"storage.backend must be postgres or memory, got %q", cfg.Storage.Backend,
		))
	}

	if cfg.Collector.BaseURL == "" {
		errs = append(errs, fmt.Errorf("collector.base_url is required"))
	}

	if cfg.Monitor.MinInterval > cfg.Monitor.DefaultInterval {
		errs = append(errs, fmt.Errorf(
			"monitor.min_interval %s exceeds monitor.default_interval %s",
			cfg.Monitor.MinInterval, cfg.Monitor.DefaultInterval,
		))
	}

	switch cfg.Notifications.Backend {
	case "noop":
	case "telegram":
		if cfg.Notifications.Telegram.Token == "" {
			errs = append(errs, fmt.Errorf(
				"notifications.telegram.token is required when backend is telegram",
			))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"notifications.backend must be telegram or noop, got %q",
			cfg.Notifications.Backend,
		))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf(
			"logging.level must be one of debug, info, warn, error, got %q",
			cfg.Logging.Level,
		))
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf(
			"logging.format must be text or json, got %q", cfg.Logging.Format,
		))
	}

	if cfg.Retention.Enabled && cfg.Retention.KeepLast < 1 {
		errs = append(errs, fmt.Errorf("retention.keep_last must be at least 1"))
	}

	return errors.Join(errs...)
}
