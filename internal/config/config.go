package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port           int
	RequestTimeout time.Duration
	StorageDriver  string

	Database  DatabaseConfig
	Auth      AuthConfig
	Weather   WeatherConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Admin     AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

// DSN builds the keyword/value connection string used by the gorm postgres driver.
func (c DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.Username, c.Password, c.Database, c.Port)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

type AuthConfig struct {
	JWTSecret        string // base64 encoded HS512 key
	JWTExpiry        time.Duration
	PasswordHashCost int
}

type WeatherConfig struct {
	APIKey          string
	City            string
	CacheTTL        time.Duration
	RefreshSchedule string
}

// Enabled reports whether a weather provider is configured.
func (c WeatherConfig) Enabled() bool {
	return c.APIKey != "" && c.City != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level string
	File  string
}

// AdminConfig seeds the first administrator when the user table is empty.
type AdminConfig struct {
	Username    string
	Password    string
	DisplayName string
}

// envBindings maps viper keys to the environment variables that override them.
var envBindings = map[string]string{
	"port":                     "PORT",
	"request_timeout":          "REQUEST_TIMEOUT",
	"storage_driver":           "STORAGE_DRIVER",
	"db.host":                  "BLUEPRINT_DB_HOST",
	"db.port":                  "BLUEPRINT_DB_PORT",
	"db.username":              "BLUEPRINT_DB_USERNAME",
	"db.password":              "BLUEPRINT_DB_PASSWORD",
	"db.database":              "BLUEPRINT_DB_DATABASE",
	"db.schema":                "BLUEPRINT_DB_SCHEMA",
	"auth.jwt_secret":          "JWT_BASE64_SECRET",
	"auth.jwt_expiry_seconds":  "JWT_EXPIRY_SECONDS",
	"auth.password_hash_cost":  "AUTH_PASSWORD_HASH_ROUNDS",
	"weather.api_key":          "WEATHER_WEATHERAPI_API_KEY",
	"weather.city":             "WEATHER_WEATHERAPI_CITY",
	"weather.cache_ttl":        "WEATHER_CACHE_TTL",
	"weather.refresh_schedule": "WEATHER_REFRESH_SCHEDULE",
	"rate_limit.rps":           "RATE_LIMIT_RPS",
	"rate_limit.burst":         "RATE_LIMIT_BURST",
	"log.level":                "LOG_LEVEL",
	"log.file":                 "LOG_FILE",
	"admin.username":           "ADMIN_USERNAME",
	"admin.password":           "ADMIN_PASSWORD",
	"admin.display_name":       "ADMIN_DISPLAY_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("storage_driver", StoragePostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("auth.jwt_expiry_seconds", 7*24*60*60)
	v.SetDefault("auth.password_hash_cost", 10)
	v.SetDefault("weather.cache_ttl", "5m")
	v.SetDefault("weather.refresh_schedule", "@every 5m")
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("admin.display_name", "Administrator")
}

// Load reads configuration from defaults, an optional CONFIG_FILE (any format
// viper understands) and the environment, in increasing precedence. A .env
// file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:           v.GetInt("port"),
		RequestTimeout: v.GetDuration("request_timeout"),
		StorageDriver:  v.GetString("storage_driver"),
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			Username: v.GetString("db.username"),
			Password: v.GetString("db.password"),
			Database: v.GetString("db.database"),
			Schema:   v.GetString("db.schema"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("auth.jwt_secret"),
			JWTExpiry:        time.Duration(v.GetInt64("auth.jwt_expiry_seconds")) * time.Second,
			PasswordHashCost: v.GetInt("auth.password_hash_cost"),
		},
		Weather: WeatherConfig{
			APIKey:          v.GetString("weather.api_key"),
			City:            v.GetString("weather.city"),
			CacheTTL:        v.GetDuration("weather.cache_ttl"),
			RefreshSchedule: v.GetString("weather.refresh_schedule"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("rate_limit.rps"),
			Burst:             v.GetInt("rate_limit.burst"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		Admin: AdminConfig{
			Username:    v.GetString("admin.username"),
			Password:    v.GetString("admin.password"),
			DisplayName: v.GetString("admin.display_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("cannot start API server without environment variable: JWT_BASE64_SECRET")
	}
	if c.Auth.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY_SECONDS must be positive")
	}
	if c.Weather.Enabled() && c.Weather.CacheTTL <= 0 {
		return errors.New("WEATHER_CACHE_TTL must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Admin.Username != "" && c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
	}
	return nil
}
