package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Vector-Attrib application.
type Config struct {
	Server       ServerConfig
	SpendDB      SpendDBConfig
	ConversionDB ConversionDBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Log          LogConfig
	Metrics      MetricsConfig
	Geo          GeoConfig
	Pivot        PivotConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

// SpendDBConfig configures the PostgreSQL spend-side store.
type SpendDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d SpendDBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ConversionDBConfig configures the ClickHouse conversion-side store.
type ConversionDBConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
	Port    string
}

// GeoConfig configures GeoIP enrichment of conversion rows.
type GeoConfig struct {
	Enabled      bool
	DatabasePath string
}

// PivotConfig holds the attribution engine settings.
type PivotConfig struct {
	// FetchRowCap bounds each backing fetch.
	FetchRowCap int
	// MinSampleDenominator is the display threshold for validation-rate views.
	MinSampleDenominator int
	// CacheEnabled turns on the Redis response cache.
	CacheEnabled bool
	// CacheTTL is how long a cached pivot response lives.
	CacheTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("VECTOR_ATTRIB_HTTP_ADDR", ":8080"),
			Env:             getEnv("VECTOR_ATTRIB_ENV", "development"),
			ShutdownTimeout: getDurationEnv("VECTOR_ATTRIB_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		SpendDB: SpendDBConfig{
			Host:     getEnv("VECTOR_ATTRIB_SPEND_DB_HOST", "localhost"),
			Port:     getIntEnv("VECTOR_ATTRIB_SPEND_DB_PORT", 5432),
			User:     getEnv("VECTOR_ATTRIB_SPEND_DB_USER", "vectorattrib"),
			Password: getEnv("VECTOR_ATTRIB_SPEND_DB_PASSWORD", "vectorattrib_secret"),
			DBName:   getEnv("VECTOR_ATTRIB_SPEND_DB_NAME", "vectorattrib"),
			SSLMode:  getEnv("VECTOR_ATTRIB_SPEND_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("VECTOR_ATTRIB_SPEND_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("VECTOR_ATTRIB_SPEND_DB_MIN_CONNS", 5),
		},
		ConversionDB: ConversionDBConfig{
			Addr:     getEnv("VECTOR_ATTRIB_CONVERSION_DB_ADDR", "localhost:9000"),
			Database: getEnv("VECTOR_ATTRIB_CONVERSION_DB_NAME", "crm"),
			User:     getEnv("VECTOR_ATTRIB_CONVERSION_DB_USER", "default"),
			Password: getEnv("VECTOR_ATTRIB_CONVERSION_DB_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("VECTOR_ATTRIB_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("VECTOR_ATTRIB_REDIS_PASSWORD", ""),
			DB:       getIntEnv("VECTOR_ATTRIB_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("VECTOR_ATTRIB_AUTH_ENABLED", true),
			MasterKey: getEnv("VECTOR_ATTRIB_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("VECTOR_ATTRIB_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("VECTOR_ATTRIB_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("VECTOR_ATTRIB_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("VECTOR_ATTRIB_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("VECTOR_ATTRIB_LOG_LEVEL", "info"),
			Format: getEnv("VECTOR_ATTRIB_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("VECTOR_ATTRIB_METRICS_ENABLED", true),
			Path:    getEnv("VECTOR_ATTRIB_METRICS_PATH", "/metrics"),
			Port:    getEnv("VECTOR_ATTRIB_METRICS_PORT", "9090"),
		},
		Geo: GeoConfig{
			Enabled:      getBoolEnv("VECTOR_ATTRIB_GEO_ENABLED", false),
			DatabasePath: getEnv("VECTOR_ATTRIB_GEO_DB_PATH", "/app/data/GeoLite2-Country.mmdb"),
		},
		Pivot: PivotConfig{
			FetchRowCap:          getIntEnv("VECTOR_ATTRIB_PIVOT_ROW_CAP", 10000),
			MinSampleDenominator: getIntEnv("VECTOR_ATTRIB_PIVOT_MIN_SAMPLE", 3),
			CacheEnabled:         getBoolEnv("VECTOR_ATTRIB_PIVOT_CACHE_ENABLED", true),
			CacheTTL:             getDurationEnv("VECTOR_ATTRIB_PIVOT_CACHE_TTL", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("VECTOR_ATTRIB_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Pivot.FetchRowCap <= 0 {
		return fmt.Errorf("VECTOR_ATTRIB_PIVOT_ROW_CAP must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
