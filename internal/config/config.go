package config

import (
	"os"
	"strconv"
	"time"
)

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	// EnsureIndexes creates missing collections and indexes at startup.
	EnsureIndexes bool
}

// MinIOConfig holds object storage settings used to resolve image file references.
// An empty Endpoint disables presigning; file references are then returned as stored.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// LogConfig selects the structured logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
// A zero RequestTimeout disables the per-request deadline.
type AppConfig struct {
	AppHost        string
	Port           string
	StoreDriver    string
	RequestTimeout time.Duration
	Mongo          MongoConfig
	MinIO          MinIOConfig
	Log            LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		StoreDriver:    getEnv("STORE_DRIVER", "mongo"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		Mongo: MongoConfig{
			URI:              getEnv("MONGO_URI", ""),
			Database:         getEnv("MONGO_DATABASE", "propcatalog"),
			ConnectTimeout:   getEnvDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
			OperationTimeout: getEnvDuration("MONGO_OPERATION_TIMEOUT", 5*time.Second),
			EnsureIndexes:    getEnvBool("MONGO_ENSURE_INDEXES", true),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignExpiry: getEnvDuration("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("5s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs := getEnvInt(key, -1); secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
