package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server Configuration
	Port        string
	Environment string
	Debug       bool

	// Database Configuration
	MongoURI string
	DBName   string

	// Admin Configuration
	AdminKey string

	// Storage Configuration
	StorageProvider  string
	UploadPath       string
	MaxUploadSize    int64
	AllowedFileTypes []string

	// S3-compatible storage (used when StorageProvider is "s3")
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string

	// Security Configuration
	CORSAllowedOrigins []string

	// Application Configuration
	AppName    string
	AppVersion string
	AppURL     string
}

var AppConfig *Config

// DefaultAllowedFileTypes is the upload extension allowlist applied when
// ALLOWED_FILE_TYPES is not set.
var DefaultAllowedFileTypes = []string{
	"jpg", "jpeg", "png", "gif", "pdf", "doc", "docx",
	"txt", "zip", "rar", "mp3", "mp4", "avi",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	config := &Config{
		// Server Configuration
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Debug:       getEnvAsBool("DEBUG", true),

		// Database Configuration
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "sharebin"),

		// Admin Configuration
		AdminKey: getEnv("ADMIN_KEY", "admin123"),

		// Storage Configuration
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		UploadPath:       getEnv("UPLOAD_PATH", "./uploads"),
		MaxUploadSize:    getEnvAsInt64("MAX_UPLOAD_SIZE", 104857600), // 100MB
		AllowedFileTypes: getEnvAsSlice("ALLOWED_FILE_TYPES", DefaultAllowedFileTypes),

		// S3 Configuration
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),

		// Security Configuration
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8080",
		}),

		// Application Configuration
		AppName:    getEnv("APP_NAME", "ShareBin"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		AppURL:     getEnv("APP_URL", "http://localhost:8080"),
	}

	// Set global config
	AppConfig = config

	if config.Debug {
		log.Printf("Configuration loaded: Environment=%s, Port=%s, Database=%s, Storage=%s",
			config.Environment, config.Port, config.DBName, config.StorageProvider)
	}

	return config
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	if parsed, err := time.ParseDuration(defaultValue); err == nil {
		return parsed
	}
	return 24 * time.Hour // fallback
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				result = append(result, item)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetServerAddress returns the server address for listening
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// ValidateConfig validates the configuration
func (c *Config) ValidateConfig() error {
	if c.MongoURI == "" {
		log.Fatal("MONGO_URI environment variable is required")
	}

	if c.AdminKey == "admin123" && c.IsProduction() {
		log.Fatal("ADMIN_KEY must be changed in production")
	}

	switch c.StorageProvider {
	case "local":
		if err := os.MkdirAll(c.UploadPath, 0755); err != nil {
			log.Printf("Warning: Could not create upload directory %s: %v", c.UploadPath, err)
		}
	case "s3":
		if c.S3Bucket == "" {
			log.Fatal("S3_BUCKET is required when STORAGE_PROVIDER is s3")
		}
	default:
		log.Fatalf("Unknown storage provider: %s", c.StorageProvider)
	}

	return nil
}
