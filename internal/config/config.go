package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	FrontendURL string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Token signing
	JWTSecret string
	TokenTTL  time.Duration

	// Mail configuration. Optional: when empty, only the
	// forgot-password path degrades, the process still starts.
	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string

	// Upload directory for activity photographs
	UploadDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTL:          time.Duration(getEnvAsInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		MailHost:          getEnv("EMAIL_HOST", "smtp.gmail.com"),
		MailPort:          getEnvAsInt("EMAIL_PORT", 587),
		MailUser:          getEnv("EMAIL", ""),
		MailPassword:      getEnv("EMAIL_PASSWORD", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// MailConfigured reports whether outbound mail credentials are present
func (c *Config) MailConfigured() bool {
	return c.MailUser != "" && c.MailPassword != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
