package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"_ENV_FILE", filepath.Join(dir, "missing.env"))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "gorm", cfg.Audit.Sink)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoader_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9090
database:
  driver: sqlite
  sqlite_path: /tmp/esg-test.db
cache:
  ttl: 30s
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv(EnvPrefix+"_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("ESG_LOG_LEVEL", "warn")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/esg-test.db", cfg.Database.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Log.Level, "environment must win over the file")
}

func TestLoader_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ESG_SERVER_PORT=7070\n"), 0o600))
	t.Setenv(EnvPrefix+"_ENV_FILE", envFile)
	t.Cleanup(func() { os.Unsetenv("ESG_SERVER_PORT") })

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
			Cache:    CacheConfig{Backend: "memory"},
			Audit:    AuditConfig{Sink: "noop"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "no allowed origins", mutate: func(c *Config) { c.Server.AllowedOrigins = nil }},
		{name: "origin without scheme", mutate: func(c *Config) { c.Server.AllowedOrigins = []string{"localhost:3000"} }, wantErr: true},
		{name: "wildcard origin", mutate: func(c *Config) { c.Server.AllowedOrigins = []string{"*"} }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "redis cache without redis", mutate: func(c *Config) { c.Cache.Backend = "redis" }, wantErr: true},
		{name: "redis cache", mutate: func(c *Config) {
			c.Cache.Backend = "redis"
			c.Redis = RedisConfig{Enabled: true, Addresses: []string{"localhost:6379"}}
		}},
		{name: "kafka sink without brokers", mutate: func(c *Config) { c.Audit.Sink = "kafka" }, wantErr: true},
		{name: "tracing without endpoint", mutate: func(c *Config) { c.Tracing.Enabled = true }, wantErr: true},
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
