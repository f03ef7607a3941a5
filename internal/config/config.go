package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Vector-Reports service.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	ClickHouse  ClickHouseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Aggregation AggregationConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Geo         GeoConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
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
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ClickHouseConfig configures the optional warehouse event source. When
// Enabled, events are read from ClickHouse instead of PostgreSQL.
type ClickHouseConfig struct {
	Enabled  bool
	DSN      string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// CacheConfig configures report caching. TTL defaults to 24h; cached
// entries are trusted for their full TTL with no explicit invalidation.
type CacheConfig struct {
	TTL time.Duration
}

// AggregationConfig configures the report fold. BatchSize bounds the
// per-chunk working set of the fold; 0 processes each stream in a single
// pass.
type AggregationConfig struct {
	BatchSize int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// GeoConfig configures GeoIP country fallback for profiles without a
// stored country.
type GeoConfig struct {
	Enabled      bool
	DatabasePath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("VECTOR_REPORTS_HTTP_ADDR", ":8080"),
			Env:             getEnv("VECTOR_REPORTS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("VECTOR_REPORTS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("VECTOR_REPORTS_DB_HOST", "localhost"),
			Port:     getIntEnv("VECTOR_REPORTS_DB_PORT", 5432),
			User:     getEnv("VECTOR_REPORTS_DB_USER", "vectorreports"),
			Password: getEnv("VECTOR_REPORTS_DB_PASSWORD", "vectorreports_secret"),
			DBName:   getEnv("VECTOR_REPORTS_DB_NAME", "vectorreports"),
			SSLMode:  getEnv("VECTOR_REPORTS_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("VECTOR_REPORTS_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("VECTOR_REPORTS_DB_MIN_CONNS", 5),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("VECTOR_REPORTS_CH_ENABLED", false),
			DSN:      getEnv("VECTOR_REPORTS_CH_DSN", "clickhouse://localhost:9000/default"),
			MaxConns: getIntEnv("VECTOR_REPORTS_CH_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("VECTOR_REPORTS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("VECTOR_REPORTS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("VECTOR_REPORTS_REDIS_DB", 0),
			PoolSize: getIntEnv("VECTOR_REPORTS_REDIS_POOL_SIZE", 50),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("VECTOR_REPORTS_CACHE_TTL", 24*time.Hour),
		},
		Aggregation: AggregationConfig{
			BatchSize: getIntEnv("VECTOR_REPORTS_AGG_BATCH_SIZE", 0),
		},
		Log: LogConfig{
			Level:  getEnv("VECTOR_REPORTS_LOG_LEVEL", "info"),
			Format: getEnv("VECTOR_REPORTS_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("VECTOR_REPORTS_METRICS_ENABLED", true),
			Path:    getEnv("VECTOR_REPORTS_METRICS_PATH", "/metrics"),
		},
		Geo: GeoConfig{
			Enabled:      getBoolEnv("VECTOR_REPORTS_GEO_ENABLED", false),
			DatabasePath: getEnv("VECTOR_REPORTS_GEO_DB_PATH", "/app/data/GeoLite2-Country.mmdb"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("VECTOR_REPORTS_CACHE_TTL must be positive")
	}
	if c.Aggregation.BatchSize < 0 {
		return fmt.Errorf("VECTOR_REPORTS_AGG_BATCH_SIZE must not be negative")
	}
	if c.Geo.Enabled && c.Geo.DatabasePath == "" {
		return fmt.Errorf("VECTOR_REPORTS_GEO_DB_PATH is required when geo is enabled")
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
