package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)

	assert.Equal(t, 32, cfg.Reader.BufferCapacity)
	assert.Equal(t, 4, cfg.Reader.RefillFactor)
	assert.Equal(t, 10, cfg.Reader.FetchTimeoutPeriods)

	assert.False(t, cfg.Registry.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Registry.TTL)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
server:
  port: 9999
reader:
  buffer_capacity: 64
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// File values win, defaults fill the rest
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 64, cfg.Reader.BufferCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Reader.RefillFactor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	content := `
reader:
  buffer_capacity: 1
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_capacity")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad server port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "bad metrics port",
			mutate:  func(c *Config) { c.Metrics.Port = -1 },
			wantErr: "invalid metrics port",
		},
		{
			name:    "buffer too small",
			mutate:  func(c *Config) { c.Reader.BufferCapacity = 1 },
			wantErr: "buffer_capacity",
		},
		{
			name:    "refill factor too small",
			mutate:  func(c *Config) { c.Reader.RefillFactor = 1 },
			wantErr: "refill_factor",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(c *Config) { c.Reader.FetchTimeoutPeriods = 0 },
			wantErr: "fetch_timeout_periods",
		},
		{
			name: "heartbeat not shorter than ttl",
			mutate: func(c *Config) {
				c.Registry.Enabled = true
				c.Registry.TTL = 10 * time.Second
				c.Registry.HeartbeatInterval = 10 * time.Second
			},
			wantErr: "heartbeat_interval",
		},
		{
			name: "registry without address",
			mutate: func(c *Config) {
				c.Registry.Enabled = true
				c.Registry.RedisAddr = ""
			},
			wantErr: "redis_addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DisabledSectionsAreSkipped(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Port = 0
	cfg.Registry.Enabled = false
	cfg.Registry.RedisAddr = ""

	assert.NoError(t, cfg.Validate())
}
