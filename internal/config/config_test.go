package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("SHAREIT_DB_PATH", "/tmp/shareit.db")

	yamlContent := `
app:
  name: shareit
database:
  path: "${SHAREIT_DB_PATH}"
api:
  http:
    port: 9000
  grpc:
    enabled: true
    port: 9001
  auth:
    enabled: true
    api_keys:
      - key: "k1"
        extra: "e1"
        name: "reporting"
        permissions: ["read:bookings"]
  rate_limit:
    user_limit: 50
    user_window: 30s
booking:
  default_page_size: 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shareit.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.API.HTTP.Port)
	assert.Equal(t, 9001, cfg.API.GRPC.Port)
	assert.Equal(t, 30*time.Second, cfg.API.RateLimit.UserWindow)
	assert.Equal(t, 20, cfg.Booking.DefaultPageSize)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		cfg := Config{Database: DatabaseConfig{Path: "path"}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "bad http port", mutate: func(c *Config) { c.API.HTTP.Port = 70000 }, wantErr: true},
		{name: "same ports", mutate: func(c *Config) {
			c.API.GRPC.Enabled = true
			c.API.GRPC.Port = c.API.HTTP.Port
		}, wantErr: true},
		{name: "negative page size", mutate: func(c *Config) { c.Booking.DefaultPageSize = -1 }, wantErr: true},
		{name: "bad time zone", mutate: func(c *Config) { c.Booking.TimeZone = "Mars/Olympus" }, wantErr: true},
		{name: "backup without path", mutate: func(c *Config) { c.Backup.Enabled = true }, wantErr: true},
		{name: "auth without keys", mutate: func(c *Config) { c.API.Auth.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{API: APIConfig{RateLimit: APIRateLimitConfig{UserLimit: 10}}}
	cfg.applyDefaults()

	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, models.DefaultPageSize, cfg.Booking.DefaultPageSize)
	assert.Equal(t, time.Minute, cfg.API.RateLimit.UserWindow)
	assert.Equal(t, "24h", cfg.Backup.Schedule)
	assert.Equal(t, "x-api-extra", cfg.API.Auth.HeaderExtra)
}

func TestValidateAPIKeys(t *testing.T) {
	tests := []struct {
		name    string
		auth    APIAuthConfig
		wantErr bool
	}{
		{name: "disabled", auth: APIAuthConfig{}},
		{name: "valid", auth: APIAuthConfig{Enabled: true, APIKeys: []APIClientKey{{Key: "a"}, {Key: "b"}}}},
		{name: "duplicate", auth: APIAuthConfig{Enabled: true, APIKeys: []APIClientKey{{Key: "a"}, {Key: "a"}}}, wantErr: true},
		{name: "empty key", auth: APIAuthConfig{Enabled: true, APIKeys: []APIClientKey{{Name: "x"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKeys(tt.auth)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKeys() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingLocation(t *testing.T) {
	loc, err := BookingConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
