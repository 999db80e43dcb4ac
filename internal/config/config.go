package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Leave        LeaveConfig
	Notification NotificationConfig
	Push         PushConfig
	RateLimit    RateLimitConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
	SSEExpiration    time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name            string
	Version         string
	Port            int
	Env             string
	LogLevel        string
	Timezone        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// LeaveConfig sets the expiry stamped on newly seeded balances.
type LeaveConfig struct {
	BalanceExpiryMonth int
	BalanceExpiryDay   int
}

type NotificationConfig struct {
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

type PushConfig struct {
	Provider           string // log or fcm
	FCMProjectID       string
	FCMCredentialsFile string
	RetrySchedule      string
	RetryLease         time.Duration
	MaxAttempts        int
	Concurrency        int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

const (
	PushProviderLog = "log"
	PushProviderFCM = "fcm"
)

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		errs = append(errs, err)
		return v
	}
	durationVar := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		errs = append(errs, err)
		return v
	}

	config := &Config{}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        intVar("DB_PORT", 5432),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hris_leave"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    intVar("DB_MAX_CONNS", 10),
		MinConns:    intVar("DB_MIN_CONNS", 2),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: durationVar("JWT_ACCESS_EXPIRATION_TIME", time.Hour),
		SSEExpiration:    durationVar("JWT_SSE_EXPIRATION_TIME", 5*time.Minute),
	}

	config.App = AppConfig{
		Name:            getEnv("APP_NAME", "hris-leave"),
		Version:         getEnv("APP_VERSION", "v1.0.0"),
		Port:            intVar("APP_PORT", 8080),
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Timezone:        getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		ShutdownTimeout: durationVar("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	config.Leave = LeaveConfig{
		BalanceExpiryMonth: intVar("LEAVE_BALANCE_EXPIRY_MONTH", 12),
		BalanceExpiryDay:   intVar("LEAVE_BALANCE_EXPIRY_DAY", 31),
	}

	config.Notification = NotificationConfig{
		Workers:       intVar("NOTIFICATION_WORKERS", 2),
		QueueSize:     intVar("NOTIFICATION_QUEUE_SIZE", 1000),
		BatchSize:     intVar("NOTIFICATION_BATCH_SIZE", 100),
		FlushInterval: durationVar("NOTIFICATION_FLUSH_INTERVAL", 2*time.Second),
	}

	config.Push = PushConfig{
		Provider:           strings.ToLower(getEnv("PUSH_PROVIDER", PushProviderLog)),
		FCMProjectID:       getEnv("FCM_PROJECT_ID", ""),
		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
		RetrySchedule:      getEnv("PUSH_RETRY_SCHEDULE", "@every 1m"),
		RetryLease:         durationVar("PUSH_RETRY_LEASE", 5*time.Minute),
		MaxAttempts:        intVar("PUSH_MAX_ATTEMPTS", 5),
		Concurrency:        intVar("PUSH_CONCURRENCY", 8),
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err))
	}
	config.RateLimit = RateLimitConfig{
		RPS:   rps,
		Burst: intVar("RATE_LIMIT_BURST", 20),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate returns the first missing or invalid value.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	month, day := c.Leave.BalanceExpiryMonth, c.Leave.BalanceExpiryDay
	if month < 1 || month > 12 {
		return fmt.Errorf("LEAVE_BALANCE_EXPIRY_MONTH must be between 1 and 12")
	}
	// Checked against a leap year so Feb 29 is allowed.
	if day < 1 || day > time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day() {
		return fmt.Errorf("LEAVE_BALANCE_EXPIRY_DAY is out of range for month %d", month)
	}

	switch c.Push.Provider {
	case PushProviderLog:
	case PushProviderFCM:
		if c.Push.FCMCredentialsFile == "" {
			return fmt.Errorf("FCM_CREDENTIALS_FILE is required when PUSH_PROVIDER=fcm")
		}
	default:
		return fmt.Errorf("PUSH_PROVIDER must be one of [log fcm]")
	}
	if c.Push.MaxAttempts < 1 {
		return fmt.Errorf("PUSH_MAX_ATTEMPTS must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location is the business timezone that calendar days are evaluated in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.App.LogLevel))
	return level, err
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
