package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every bound variable so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	t.Setenv("CONFIG_FILE", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_BASE64_SECRET", "c2VjcmV0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 10, cfg.Auth.PasswordHashCost)
	assert.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, "@every 5m", cfg.Weather.RefreshSchedule)
	assert.False(t, cfg.Weather.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_BASE64_SECRET")
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_BASE64_SECRET", "c2VjcmV0")
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BLUEPRINT_DB_HOST", "db.internal")
	t.Setenv("BLUEPRINT_DB_SCHEMA", "dashboard")
	t.Setenv("JWT_EXPIRY_SECONDS", "60")
	t.Setenv("WEATHER_WEATHERAPI_API_KEY", "key")
	t.Setenv("WEATHER_WEATHERAPI_CITY", "Toronto")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, time.Minute, cfg.Auth.JWTExpiry)
	assert.True(t, cfg.Weather.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.DSN(), "search_path=dashboard")
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("port: 7000\nauth:\n  jwt_secret: c2VjcmV0\ndb:\n  host: from-file\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BLUEPRINT_DB_HOST", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "c2VjcmV0", cfg.Auth.JWTSecret)
	assert.Equal(t, "from-env", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:           8080,
			RequestTimeout: time.Second,
			StorageDriver:  StorageMemory,
			Auth:           AuthConfig{JWTSecret: "x", JWTExpiry: time.Hour},
			RateLimit:      RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"bad port":          func(c *Config) { c.Port = 0 },
		"bad driver":        func(c *Config) { c.StorageDriver = "sqlite" },
		"no rate":           func(c *Config) { c.RateLimit.Burst = 0 },
		"admin no password": func(c *Config) { c.Admin.Username = "root" },
		"weather no ttl": func(c *Config) {
			c.Weather = WeatherConfig{APIKey: "k", City: "c"}
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
