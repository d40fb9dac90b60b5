package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/jdevries/crosslister/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
listings:
  csv_path: listings.csv
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "listings.csv", cfg.Listings.CSVPath)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
listings:
  csv_path: listings.csv
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "images", cfg.Listings.ImagesDir)
				assert.Equal(t, "categories.json", cfg.Listings.CategoryMapPath)
				assert.Equal(t, "credentials.json", cfg.Listings.CredentialsPath)
				assert.Equal(t, "cookies", cfg.Browser.CookiesDir)
				assert.Equal(t, 1366, cfg.Browser.WindowWidth)
				assert.Equal(t, 900, cfg.Browser.WindowHeight)
				assert.Equal(t, 2*time.Minute, cfg.Browser.Timeout)
				assert.Equal(t, 2, cfg.Dispatch.MaxParallel)
				assert.Equal(t, 2*time.Second, cfg.Dispatch.DelayMin)
				assert.Equal(t, 6*time.Second, cfg.Dispatch.DelayMax)
				assert.Equal(t, 6.0, cfg.Dispatch.RateLimit.PerMinute)
				assert.Equal(t, 2, cfg.Dispatch.RateLimit.Burst)
				assert.Equal(t, 5432, cfg.Store.Port)
				assert.Equal(t, "disable", cfg.Store.SSLMode)
				assert.Equal(t, 4, cfg.Store.PoolSize)
				assert.Equal(t, 1*time.Hour, cfg.Schedule.Interval)
				assert.Equal(t, ":9090", cfg.Metrics.Addr)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
listings:
  csv_path: listings.csv
store:
  enabled: true
  host: localhost
  name: crosslister
  user: crosslister
  password: "${TEST_STORE_PASSWORD}"
`,
			envVars: map[string]string{
				"TEST_STORE_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Store.Password)
			},
		},
		{
			name:    "missing required csv_path",
			yaml:    `{}`,
			wantErr: "listings.csv_path is required",
		},
		{
			name: "unknown platform name",
			yaml: `
listings:
  csv_path: listings.csv
  platforms: [marktplaats, ebay]
`,
			wantErr: "listings.platforms",
		},
		{
			name: "store enabled without host",
			yaml: `
listings:
  csv_path: listings.csv
store:
  enabled: true
  name: crosslister
  user: crosslister
`,
			wantErr: "store.host is required when the store is enabled",
		},
		{
			name: "delay range inverted",
			yaml: `
listings:
  csv_path: listings.csv
dispatch:
  delay_min: 10s
  delay_max: 2s
`,
			wantErr: "dispatch.delay_max must not be below dispatch.delay_min",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
listings:
  csv_path: /data/listings.csv
  images_dir: /data/images
  category_map: /data/categories.json
  credentials: /data/credentials.json
  platforms: [marktplaats, vinted]
browser:
  headless: true
  cookies_dir: /data/cookies
  user_agent: "Mozilla/5.0"
  window_width: 1920
  window_height: 1080
  timeout: 3m
dispatch:
  max_parallel: 4
  delay_min: 1s
  delay_max: 3s
  rate_limit:
    per_minute: 12
    burst: 4
store:
  enabled: true
  host: db.example.com
  port: 5433
  name: crosslister_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 8
schedule:
  interval: 30m
metrics:
  enabled: true
  addr: ":2112"
output:
  results_path: /data/results.json
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "/data/listings.csv", cfg.Listings.CSVPath)
				assert.Equal(t, "/data/images", cfg.Listings.ImagesDir)
				platforms, err := cfg.Listings.EnabledPlatforms()
				require.NoError(t, err)
				assert.Equal(t, []domain.Platform{
					domain.PlatformMarktplaats,
					domain.PlatformVinted,
				}, platforms)
				assert.True(t, cfg.Browser.Headless)
				assert.Equal(t, 1920, cfg.Browser.WindowWidth)
				assert.Equal(t, 3*time.Minute, cfg.Browser.Timeout)
				assert.Equal(t, 4, cfg.Dispatch.MaxParallel)
				assert.Equal(t, 12.0, cfg.Dispatch.RateLimit.PerMinute)
				assert.Equal(t, "db.example.com", cfg.Store.Host)
				assert.Equal(t, 5433, cfg.Store.Port)
				assert.Equal(t, "require", cfg.Store.SSLMode)
				assert.Equal(t, 8, cfg.Store.PoolSize)
				assert.Equal(t, 30*time.Minute, cfg.Schedule.Interval)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, ":2112", cfg.Metrics.Addr)
				assert.Equal(t, "/data/results.json", cfg.Output.ResultsPath)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestListings_EnabledPlatforms_Empty(t *testing.T) {
	t.Parallel()

	l := Listings{}
	platforms, err := l.EnabledPlatforms()
	require.NoError(t, err)
	assert.Equal(t, domain.Platforms, platforms)
}

func TestStore_DSN(t *testing.T) {
	t.Parallel()

	cfg := Store{
		Host:     "localhost",
		Port:     5432,
		Name:     "crosslister",
		User:     "crosslister",
		Password: "testpass",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 dbname=crosslister user=crosslister password=testpass sslmode=disable"
	assert.Equal(t, want, cfg.DSN())
}
