// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Image storage backends
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
	StorageS3    = "s3"
	StorageGCS   = "gcs"
)

// Config holds all configuration for the application
type Config struct {
	Database       DatabaseConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	JWT            JWTConfig
	Storage        StorageConfig
	APIKey         string
	DefaultCountry string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// StorageConfig selects and configures the image host
type StorageConfig struct {
	Backend string
	// PublicBaseURL overrides the URL prefix of stored images (CDN, public bucket)
	PublicBaseURL string
	Local         LocalStorageConfig
	MinIO         MinIOConfig
	S3            S3Config
	GCS           GCSConfig
}

// LocalStorageConfig holds settings of the on-disk image host
type LocalStorageConfig struct {
	BasePath string
	BaseURL  string
}

// MinIOConfig holds MinIO connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds S3 connection settings
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// GCSConfig holds Google Cloud Storage settings
type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intFromEnv("SERVER_PORT", 5500)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	rateLimit, err := intFromEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute = rateLimit

	// Logging configuration
	cfg.Logging.Level = stringFromEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	accessExpiry, err := time.ParseDuration(stringFromEnv("JWT_ACCESS_TOKEN_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	// API Key configuration (optional, enables maintenance routes)
	cfg.APIKey = os.Getenv("API_KEY")

	cfg.DefaultCountry = stringFromEnv("DEFAULT_COUNTRY", "Honduras")

	if err := loadStorage(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadStorage(cfg *Config) error {
	s := &cfg.Storage
	s.Backend = strings.ToLower(stringFromEnv("IMAGE_STORAGE", StorageLocal))
	s.PublicBaseURL = strings.TrimRight(os.Getenv("IMAGE_PUBLIC_BASE_URL"), "/")

	s.Local.BasePath = stringFromEnv("MEDIA_BASE_PATH", "./media")
	s.Local.BaseURL = strings.TrimRight(
		stringFromEnv("MEDIA_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)), "/")

	switch s.Backend {
	case StorageLocal:
	case StorageMinIO:
		s.MinIO.Endpoint = os.Getenv("MINIO_ENDPOINT")
		s.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
		s.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")
		s.MinIO.Bucket = stringFromEnv("MINIO_BUCKET", "archive")
		s.MinIO.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"
		if s.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when IMAGE_STORAGE=minio")
		}
	case StorageS3:
		s.S3.Region = stringFromEnv("S3_REGION", "us-east-1")
		s.S3.Bucket = os.Getenv("S3_BUCKET")
		s.S3.Endpoint = os.Getenv("S3_ENDPOINT")
		s.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
		s.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
		if s.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	case StorageGCS:
		s.GCS.Bucket = os.Getenv("GCS_BUCKET")
		s.GCS.ProjectID = os.Getenv("GCS_PROJECT_ID")
		s.GCS.CredentialsFile = os.Getenv("GCS_CREDENTIALS_FILE")
		if s.GCS.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when IMAGE_STORAGE=gcs")
		}
	default:
		return fmt.Errorf("invalid IMAGE_STORAGE: %q", s.Backend)
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&multiStatements=true&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func stringFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
