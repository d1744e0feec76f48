package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for uploaded PDF attachments.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether attachment storage is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// RedisConfig holds the repository cache settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether the repository cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// SiteConfig is passed explicitly to everything that builds absolute URLs
// or SEO metadata.
type SiteConfig struct {
	// BaseURL is the public origin used in canonical links and the sitemap.
	BaseURL string
	// InternalURL is where the export browser reaches this server.
	InternalURL       string
	Name              string
	RevalidateSeconds int
}

// Revalidate returns the content cache lifetime.
func (c SiteConfig) Revalidate() time.Duration {
	if c.RevalidateSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RevalidateSeconds) * time.Second
}

// ExportConfig selects and tunes the PDF export strategy.
type ExportConfig struct {
	Strategy          string
	BrowserBin        string
	BrowserControlURL string
	Scale             float64
	TimeoutSec        int
}

// Timeout returns the per-export deadline.
func (c ExportConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogMode  string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Site     SiteConfig
	Export   ExportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	port := getEnv("PORT", "8080")
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    port,
		LogMode: getEnv("LOG_MODE", "dev"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Site: SiteConfig{
			BaseURL:           strings.TrimRight(getEnv("SITE_BASE_URL", "https://the-warriors-den.com"), "/"),
			InternalURL:       strings.TrimRight(getEnv("SITE_INTERNAL_URL", "http://localhost:"+port), "/"),
			Name:              getEnv("SITE_NAME", "The Warriors Den"),
			RevalidateSeconds: getEnvInt("SITE_REVALIDATE_SEC", 60),
		},
		Export: ExportConfig{
			Strategy:          getEnv("EXPORT_STRATEGY", "structured"),
			BrowserBin:        getEnv("EXPORT_BROWSER_BIN", ""),
			BrowserControlURL: getEnv("EXPORT_BROWSER_CONTROL_URL", ""),
			Scale:             getEnvFloat("EXPORT_CAPTURE_SCALE", 2),
			TimeoutSec:        getEnvInt("EXPORT_TIMEOUT_SEC", 30),
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil && f > 0 {
			return f
		}
	}
	return def
}
