package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"footix-auth-service/pkg/logger"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported password storage schemes
const (
	PasswordSchemePlaintext = "plaintext"
	PasswordSchemeBcrypt    = "bcrypt"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Auth      AuthConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver   string `mapstructure:"DB_DRIVER"`
	URL      string `mapstructure:"DATABASE_URL"`
	Host     string `mapstructure:"DB_HOST"`
	Port     string `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	MaxOpenConns    int  `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int  `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int  `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int  `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
	AutoMigrate     bool `mapstructure:"DB_AUTO_MIGRATE"`
}

// AppConfig holds configuration for the HTTP server
type AppConfig struct {
	HTTPPort               string   `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	CORSAllowedOrigins     []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the socket peer is the client.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`
}

// AuthConfig holds configuration for account registration
type AuthConfig struct {
	PasswordScheme string `mapstructure:"PASSWORD_SCHEME"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`
	// ReportConflict answers duplicate emails with 409 instead of the
	// generic 500 older clients expect.
	ReportConflict bool `mapstructure:"AUTH_REPORT_CONFLICT"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
}

// RateLimitConfig holds configuration for the registration rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// LoadConfig reads configuration from app.env under path and from
// environment variables. Environment variables take precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.URL = v.GetString("DATABASE_URL")
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	config.App.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	config.Auth.PasswordScheme = strings.ToLower(v.GetString("PASSWORD_SCHEME"))
	config.Auth.BcryptCost = v.GetInt("BCRYPT_COST")
	config.Auth.ReportConflict = v.GetBool("AUTH_REPORT_CONFLICT")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "footix")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 600)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 300)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("PASSWORD_SCHEME", PasswordSchemePlaintext)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("AUTH_REPORT_CONFLICT", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5.0)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 10)

	// Logger defaults
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "footix-auth-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for values the application cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.DB.DSN() == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}

	switch c.Auth.PasswordScheme {
	case PasswordSchemePlaintext, PasswordSchemeBcrypt:
	default:
		errs = append(errs, fmt.Errorf("unsupported PASSWORD_SCHEME %q", c.Auth.PasswordScheme))
	}

	if _, err := logger.ParseLevel(c.Logger.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("RATE_LIMIT_ENABLED requires REDIS_ENABLED"))
		}
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("rate limit rate and burst must be positive"))
		}
	}

	return errors.Join(errs...)
}

// DSN returns the connection string for the configured driver.
// DATABASE_URL wins; for postgres a keyword DSN is built from the DB_* parts otherwise.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == DriverSQLite {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
