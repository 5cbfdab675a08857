// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion   string
	S3Bucket    string
	PhotoPrefix string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Import
	MaxFileBytes   int64
	BatchSize      int
	UpdateExisting bool
	ImportPhotos   bool

	// Notifications
	SESSenderEmail string
	OperatorEmail  string
	WebhookURL     string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:   getEnv("AWS_REGION", "eu-central-1"),
		S3Bucket:    getEnv("S3_BUCKET", "award-candidate-csv-dev"),
		PhotoPrefix: getEnv("S3_PHOTO_PREFIX", "photos/"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("AWARD_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("AWARD_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("AWARD_DB_NAME", "award_candidates")),
		DBUser:     getEnv("DB_USER", getEnv("AWARD_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("AWARD_DB_PASSWORD", "")),

		// Import
		MaxFileBytes:   getEnvInt64("IMPORT_MAX_FILE_BYTES", 10*1024*1024),
		BatchSize:      getEnvInt("IMPORT_BATCH_SIZE", 50),
		UpdateExisting: getEnvBool("IMPORT_UPDATE_EXISTING", false),
		ImportPhotos:   getEnvBool("IMPORT_PHOTOS", true),

		// Notifications
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		OperatorEmail:  getEnv("OPERATOR_EMAIL", ""),
		WebhookURL:     getEnv("IMPORT_WEBHOOK_URL", ""),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an environment variable as int64 or returns a default value.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as bool or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
