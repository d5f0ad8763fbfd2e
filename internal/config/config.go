package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string   `yaml:"port" env:"SERVER_PORT"`
		Mode          string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL       string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		AllowOrigins  []string `yaml:"allow_origins" env:"SERVER_ALLOW_ORIGINS"`
		MaxUploadSize int64    `yaml:"max_upload_size" env:"SERVER_MAX_UPLOAD_SIZE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Auth struct {
		RequireEmailVerification bool   `yaml:"require_email_verification" env:"AUTH_REQUIRE_EMAIL_VERIFICATION"`
		VerificationTokenTTL     string `yaml:"verification_token_ttl" env:"AUTH_VERIFICATION_TOKEN_TTL"`
	} `yaml:"auth"`

	Storage struct {
		Driver          string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath       string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		SigningSecret   string `yaml:"signing_secret" env:"STORAGE_SIGNING_SECRET"`
		SignedURLTTL    string `yaml:"signed_url_ttl" env:"STORAGE_SIGNED_URL_TTL"`
		URLCacheSize    int    `yaml:"url_cache_size" env:"STORAGE_URL_CACHE_SIZE"`
		MaterialBucket  string `yaml:"material_bucket" env:"STORAGE_MATERIAL_BUCKET"`
		ReferenceBucket string `yaml:"reference_bucket" env:"STORAGE_REFERENCE_BUCKET"`
		Minio           struct {
			Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
			AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
			UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
			Region    string `yaml:"region" env:"MINIO_REGION"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
		AdminBranch   string `yaml:"admin_branch" env:"SEED_ADMIN_BRANCH"`
	} `yaml:"seed"`

	Reconcile struct {
		Interval    string `yaml:"interval" env:"RECONCILE_INTERVAL"`
		Grace       string `yaml:"grace" env:"RECONCILE_GRACE"`
		BatchSize   int    `yaml:"batch_size" env:"RECONCILE_BATCH_SIZE"`
		MaxAttempts int    `yaml:"max_attempts" env:"RECONCILE_MAX_ATTEMPTS"`
	} `yaml:"reconcile"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file next to the working directory is loaded first; variables already
// present in the environment win over it.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.AllowOrigins = []string{"http://localhost:5173"}
	config.Server.MaxUploadSize = 50 << 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "nhance"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "nhance.edu"

	config.Auth.RequireEmailVerification = true
	config.Auth.VerificationTokenTTL = "24h"

	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "./uploads"
	config.Storage.SignedURLTTL = "1h"
	config.Storage.URLCacheSize = 1024
	config.Storage.MaterialBucket = "materials"
	config.Storage.ReferenceBucket = "references"
	config.Storage.Minio.Region = "us-east-1"

	config.SMTP.Port = 587
	config.SMTP.FromName = "nhance"
	config.SMTP.FromEmail = "no-reply@nhance.edu"
	config.SMTP.UseTLS = false

	config.Seed.AdminEmail = "admin@nhance.edu"
	config.Seed.AdminName = "Admin"
	config.Seed.AdminBranch = "CSE"

	config.Reconcile.Interval = "0s"
	config.Reconcile.Grace = "5m"
	config.Reconcile.BatchSize = 100
	config.Reconcile.MaxAttempts = 10

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"verification token TTL":       config.Auth.VerificationTokenTTL,
		"signed URL TTL":               config.Storage.SignedURLTTL,
		"reconcile interval":           config.Reconcile.Interval,
		"reconcile grace":              config.Reconcile.Grace,
		"database connection lifetime": config.Database.ConnMaxLifetime,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Storage.Driver) {
	case StorageDriverLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local path is required for the local driver")
		}
		if config.Storage.SigningSecret == "" {
			config.Storage.SigningSecret = config.JWT.Secret
		}
	case StorageDriverMinio:
		if config.Storage.Minio.Endpoint == "" {
			return fmt.Errorf("minio endpoint is required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
