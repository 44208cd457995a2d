package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration int

	// Cloudinary Configuration
	CloudinaryURL       string
	DefaultProductImage string

	// File Upload Configuration
	MaxUploadFiles int
	MaxFileSize    int64

	// Rate Limiting Configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration

	// Catalog behaviour
	StrictVariantSKU              bool
	RecomputeRatingOnReviewDelete bool

	// Admin bootstrap
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("ENVIRONMENT", "development")

	return &Config{
		Environment:   env,
		Port:          getEnv("PORT", "5000"),
		DatabaseURL:   getEnv("DATABASE_URL", "marketplace.db"),
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 30*24*60*60), // 30 days in seconds

		CloudinaryURL:       getEnv("CLOUDINARY_URL", ""),
		DefaultProductImage: getEnv("DEFAULT_PRODUCT_IMAGE", "https://res.cloudinary.com/demo/image/upload/v1690000000/products/default-product.png"),

		MaxUploadFiles: getEnvAsInt("MAX_UPLOAD_FILES", 5),
		MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024), // 5MB

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", defaultRateLimit(env)),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),

		StrictVariantSKU:              getEnvAsBool("STRICT_VARIANT_SKU", false),
		RecomputeRatingOnReviewDelete: getEnvAsBool("RECOMPUTE_RATING_ON_REVIEW_DELETE", false),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// defaultRateLimit is strict in production and effectively open during development.
func defaultRateLimit(env string) int {
	if env == "production" {
		return 100
	}
	return 10000
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	// Validate environment values
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.MaxUploadFiles <= 0 {
		return fmt.Errorf("max upload files must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, DatabaseURL: %s}", c.Environment, c.Port, c.DatabaseURL)
}
