package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	RateLimit RateLimitConfig
	Report    ReportConfig
}

type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	PoolSize int
}

// Enabled reports whether a stock cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type LoggerConfig struct {
	Level       string
	Format      string
	Service     string
	Environment string
	AddSource   bool
}

type RateLimitConfig struct {
	Enabled bool
	RPS     int
	Burst   int

	// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-IP. Only
	// enable behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

type ReportConfig struct {
	WeekStart string
	Timezone  string
}

// Load reads the configuration from the environment. Values from an optional
// .env file in the working directory are applied first; real environment
// variables take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnvString("HTTP_ADDR", ":8080"),
			GRPCAddr:        getEnvString("GRPC_ADDR", ":50051"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnvString("DB_DRIVER", "mysql"),
			DSN:             getEnvString("DB_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", ""),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		Logger: LoggerConfig{
			Level:       strings.ToLower(getEnvString("LOG_LEVEL", "info")),
			Format:      strings.ToLower(getEnvString("LOG_FORMAT", "json")),
			Service:     getEnvString("SERVICE_NAME", "inventory-sales"),
			Environment: getEnvString("APP_ENV", ""),
			AddSource:   getEnvBool("LOG_ADD_SOURCE", true),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:               getEnvInt("RATE_LIMIT_RPS", 50),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 100),
			TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		},
		Report: ReportConfig{
			WeekStart: strings.ToLower(getEnvString("REPORT_WEEK_START", "monday")),
			Timezone:  getEnvString("REPORT_TIMEZONE", "UTC"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("HTTP address cannot be empty")
	}
	if c.Server.GRPCAddr == "" {
		return fmt.Errorf("gRPC address cannot be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	validDrivers := []string{"mysql", "postgres"}
	if !slices.Contains(validDrivers, strings.ToLower(c.Database.Driver)) {
		return fmt.Errorf("invalid database driver %q, must be one of: %s", c.Database.Driver, strings.Join(validDrivers, ", "))
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}
	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}

	if _, err := c.Report.WeekStartDay(); err != nil {
		return err
	}
	if _, err := c.Report.Location(); err != nil {
		return err
	}

	return nil
}

// WeekStartDay returns the first day of a reporting week.
func (c ReportConfig) WeekStartDay() (time.Weekday, error) {
	switch c.WeekStart {
	case "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("invalid week start %q, must be monday or sunday", c.WeekStart)
	}
}

func (c ReportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
