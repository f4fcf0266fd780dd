package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Calc     CalcConfig
	Jobs     JobsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// ExtractConfig holds table-extraction configuration
type ExtractConfig struct {
	Pdftotext      string
	Workers        int
	PageTimeout    time.Duration
	MaxUploadBytes int64
}

// CalcConfig holds bulk-calculation configuration
type CalcConfig struct {
	BatchSize       int
	Workers         int
	PageSize        int
	MaxPages        int
	MaxPageFailures int
}

// JobsConfig holds ingestion-job registry configuration
type JobsConfig struct {
	DBPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8001"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Extract: ExtractConfig{
			Pdftotext:      getEnv("PDFTOTEXT", "pdftotext"),
			Workers:        getEnvAsInt("EXTRACT_WORKERS", 5),
			PageTimeout:    getEnvAsDuration("EXTRACT_PAGE_TIMEOUT", 30*time.Second),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 64<<20)),
		},
		Calc: CalcConfig{
			BatchSize:       getEnvAsInt("CALC_BATCH_SIZE", 100),
			Workers:         getEnvAsInt("CALC_WORKERS", 4),
			PageSize:        getEnvAsInt("CALC_PAGE_SIZE", 500),
			MaxPages:        getEnvAsInt("CALC_MAX_PAGES", 200),
			MaxPageFailures: getEnvAsInt("CALC_MAX_PAGE_FAILURES", 3),
		},
		Jobs: JobsConfig{
			DBPath: getEnv("JOBS_DB_PATH", "./tmp/ingest-jobs.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extract.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Calc.BatchSize <= 0 {
		return NewAppError("CONFIG_ERROR", "CALC_BATCH_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
