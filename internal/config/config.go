package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Payroll  PayrollConfig
	Storage  StorageConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds the defaults consumed by the monthly summary generator
type PayrollConfig struct {
	DefaultTaxPercentage decimal.Decimal
	InvoicePrefix        string
	InvoiceSeqWidth      int
	SequenceMaxRetries   int
	BatchConcurrency     int
}

// StorageConfig selects where exports are written. Driver is "local" or "s3".
type StorageConfig struct {
	Driver   string
	BasePath string
	BaseURL  string
	S3Bucket string
	S3Region string
}

// CronConfig controls the scheduled monthly generation. Day and Hour are UTC.
type CronConfig struct {
	SummaryEnabled bool
	SummaryDay     int
	SummaryHour    int
}

func Load() (*Config, error) {
	// .env is optional; the CLI and CI run from plain environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "workforce-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Payroll configuration
	taxPercentage, err := decimal.NewFromString(getEnv("PAYROLL_DEFAULT_TAX_PERCENTAGE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_DEFAULT_TAX_PERCENTAGE: %w", err)
	}
	seqWidth, err := getEnvInt("INVOICE_SEQ_WIDTH", 4)
	if err != nil {
		return nil, err
	}
	maxRetries, err := getEnvInt("INVOICE_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("BATCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	config.Payroll = PayrollConfig{
		DefaultTaxPercentage: taxPercentage,
		InvoicePrefix:        getEnv("INVOICE_PREFIX", "INV"),
		InvoiceSeqWidth:      seqWidth,
		SequenceMaxRetries:   maxRetries,
		BatchConcurrency:     concurrency,
	}

	config.Storage = StorageConfig{
		Driver:   getEnv("STORAGE_DRIVER", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
		S3Bucket: getEnv("STORAGE_S3_BUCKET", ""),
		S3Region: getEnv("STORAGE_S3_REGION", ""),
	}

	// Cron configuration
	cronDay, err := getEnvInt("SUMMARY_CRON_DAY", 1)
	if err != nil {
		return nil, err
	}
	cronHour, err := getEnvInt("SUMMARY_CRON_HOUR", 2)
	if err != nil {
		return nil, err
	}

	config.Cron = CronConfig{
		SummaryEnabled: getEnv("SUMMARY_CRON_ENABLED", "true") == "true",
		SummaryDay:     cronDay,
		SummaryHour:    cronHour,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Payroll.DefaultTaxPercentage.IsNegative() {
		return fmt.Errorf("PAYROLL_DEFAULT_TAX_PERCENTAGE must be non-negative")
	}
	if c.Payroll.DefaultTaxPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("PAYROLL_DEFAULT_TAX_PERCENTAGE must not exceed 100")
	}
	if c.Payroll.InvoicePrefix == "" {
		return fmt.Errorf("INVOICE_PREFIX is required")
	}
	if c.Payroll.InvoiceSeqWidth <= 0 {
		return fmt.Errorf("INVOICE_SEQ_WIDTH must be positive")
	}
	if c.Payroll.SequenceMaxRetries < 0 {
		return fmt.Errorf("INVOICE_MAX_RETRIES must be non-negative")
	}
	if c.Payroll.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive")
	}
	if c.Storage.Driver == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("STORAGE_S3_BUCKET is required for the s3 storage driver")
	}
	if c.Cron.SummaryDay < 1 || c.Cron.SummaryDay > 28 {
		return fmt.Errorf("SUMMARY_CRON_DAY must be between 1 and 28")
	}
	if c.Cron.SummaryHour < 0 || c.Cron.SummaryHour > 23 {
		return fmt.Errorf("SUMMARY_CRON_HOUR must be between 0 and 23")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
