// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Listings Listings `yaml:"listings"`
	Browser  Browser  `yaml:"browser"`
	Dispatch Dispatch `yaml:"dispatch"`
	Store    Store    `yaml:"store"`
	Schedule Schedule `yaml:"schedule"`
	Metrics  Metrics  `yaml:"metrics"`
	Notify   Notify   `yaml:"notify"`
	Output   Output   `yaml:"output"`
	Logging  Logging  `yaml:"logging"`
}

// Listings defines where listing data comes from.
type Listings struct {
	CSVPath         string   `yaml:"csv_path"`
	ImagesDir       string   `yaml:"images_dir"`
	CategoryMapPath string   `yaml:"category_map"`
	CredentialsPath string   `yaml:"credentials"`
	Platforms       []string `yaml:"platforms"`
}

// EnabledPlatforms parses the configured platform names. An empty list means
// every supported platform.
func (l *Listings) EnabledPlatforms() ([]domain.Platform, error) {
	if len(l.Platforms) == 0 {
		return domain.Platforms, nil
	}
	platforms := make([]domain.Platform, 0, len(l.Platforms))
	for _, name := range l.Platforms {
		platform, ok := domain.ParsePlatform(name)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q", name)
		}
		platforms = append(platforms, platform)
	}
	return platforms, nil
}

// Browser defines Chrome automation settings.
type Browser struct {
	Headless     bool          `yaml:"headless"`
	CookiesDir   string        `yaml:"cookies_dir"`
	UserAgent    string        `yaml:"user_agent"`
	WindowWidth  int           `yaml:"window_width"`
	WindowHeight int           `yaml:"window_height"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Dispatch defines posting concurrency and pacing.
type Dispatch struct {
	MaxParallel int             `yaml:"max_parallel"`
	DelayMin    time.Duration   `yaml:"delay_min"`
	DelayMax    time.Duration   `yaml:"delay_max"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles posting attempts across all platforms.
type RateLimitConfig struct {
	PerMinute float64 `yaml:"per_minute"`
	Burst     int     `yaml:"burst"`
}

// Store defines the optional PostgreSQL posting-history store.
type Store struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (s *Store) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		s.Host, s.Port, s.Name, s.User, s.Password, s.SSLMode,
	)
}

// Schedule defines the watch-mode posting interval.
type Schedule struct {
	Interval time.Duration `yaml:"interval"`
}

// Metrics defines the Prometheus endpoint settings.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Notify defines run summary notification settings. An empty webhook URL
// disables notifications.
type Notify struct {
	DiscordWebhook string `yaml:"discord_webhook"`
}

// Output defines where run results are written.
type Output struct {
	ResultsPath string `yaml:"results_path"`
}

// Logging defines logging settings.
type Logging struct {
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
	applyListingsDefaults(&cfg.Listings)
	applyBrowserDefaults(&cfg.Browser)
	applyDispatchDefaults(&cfg.Dispatch)
	applyStoreDefaults(&cfg.Store)
	applyScheduleDefaults(&cfg.Schedule)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)
}

func applyListingsDefaults(l *Listings) {
	if l.ImagesDir == "" {
		l.ImagesDir = "images"
	}
	if l.CategoryMapPath == "" {
		l.CategoryMapPath = "categories.json"
	}
	if l.CredentialsPath == "" {
		l.CredentialsPath = "credentials.json"
	}
}

func applyBrowserDefaults(b *Browser) {
	if b.CookiesDir == "" {
		b.CookiesDir = "cookies"
	}
	if b.WindowWidth == 0 {
		b.WindowWidth = 1366
	}
	if b.WindowHeight == 0 {
		b.WindowHeight = 900
	}
	if b.Timeout == 0 {
		b.Timeout = 2 * time.Minute
	}
}

func applyDispatchDefaults(d *Dispatch) {
	if d.MaxParallel == 0 {
		d.MaxParallel = 2
	}
	if d.DelayMin == 0 {
		d.DelayMin = 2 * time.Second
	}
	if d.DelayMax == 0 {
		d.DelayMax = 6 * time.Second
	}
	if d.RateLimit.PerMinute == 0 {
		d.RateLimit.PerMinute = 6.0
	}
	if d.RateLimit.Burst == 0 {
		d.RateLimit.Burst = 2
	}
}

func applyStoreDefaults(s *Store) {
	if s.Port == 0 {
		s.Port = 5432
	}
	if s.SSLMode == "" {
		s.SSLMode = "disable"
	}
	if s.PoolSize == 0 {
		s.PoolSize = 4
	}
}

func applyScheduleDefaults(s *Schedule) {
	if s.Interval == 0 {
		s.Interval = 1 * time.Hour
	}
}

func applyMetricsDefaults(m *Metrics) {
	if m.Addr == "" {
		m.Addr = ":9090"
	}
}

func applyLoggingDefaults(l *Logging) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Listings.CSVPath == "" {
		errs = append(errs, fmt.Errorf("listings.csv_path is required"))
	}
	if _, err := cfg.Listings.EnabledPlatforms(); err != nil {
		errs = append(errs, fmt.Errorf("listings.platforms: %w", err))
	}

	if cfg.Dispatch.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("dispatch.max_parallel must be at least 1"))
	}
	if cfg.Dispatch.DelayMax < cfg.Dispatch.DelayMin {
		errs = append(errs, fmt.Errorf("dispatch.delay_max must not be below dispatch.delay_min"))
	}

	if cfg.Store.Enabled {
		if cfg.Store.Host == "" {
			errs = append(errs, fmt.Errorf("store.host is required when the store is enabled"))
		}
		if cfg.Store.Name == "" {
			errs = append(errs, fmt.Errorf("store.name is required when the store is enabled"))
		}
		if cfg.Store.User == "" {
			errs = append(errs, fmt.Errorf("store.user is required when the store is enabled"))
		}
	}

	return errors.Join(errs...)
}
