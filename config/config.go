package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	DBAutoMigrate bool

	// Redis configuration. Redis is optional; without it the image cache,
	// token revocation and the shared rate limiter are disabled.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Recipe generation
	RecipeProvider  string
	OpenAIAPIKey    string
	OpenAIAPIURL    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	RecipeRateLimit int

	// Ingredient images
	ImageProvider      string
	SpoonacularAPIKey  string
	SpoonacularBaseURL string
	UnsplashAccessKey  string
	UnsplashBaseURL    string
	ImageCacheTTL      time.Duration

	// Optional S3 mirror for ingredient images
	S3BucketName string
	AWSRegion    string
}

const defaultJWTSecret = "your-secret-key"

// RedisEnabled reports whether a Redis endpoint is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v, env)

	cfg := &Config{
		Environment:    env,
		ServerPort:     v.GetString("SERVER_PORT"),
		ServerHost:     v.GetString("SERVER_HOST"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DBDriver:      v.GetString("DB_DRIVER"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        secret(v, "DB_USER", "db_user"),
		DBPassword:    secret(v, "DB_PASSWORD", "db_password"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSL_MODE"),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		DBAutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: secret(v, "REDIS_PASSWORD", "redis_password"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisURL:      secret(v, "REDIS_URL", "redis_url"),

		JWTSecret: secret(v, "JWT_SECRET", "jwt_secret"),
		TokenTTL:  v.GetDuration("TOKEN_TTL"),

		RecipeProvider:  strings.ToLower(v.GetString("RECIPE_PROVIDER")),
		OpenAIAPIKey:    secret(v, "OPENAI_API_KEY", "openai_api_key"),
		OpenAIAPIURL:    v.GetString("OPENAI_API_URL"),
		OpenAIModel:     v.GetString("OPENAI_MODEL"),
		GeminiAPIKey:    secret(v, "GEMINI_API_KEY", "gemini_api_key"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		RecipeRateLimit: v.GetInt("RECIPE_RATE_LIMIT"),

		ImageProvider:      strings.ToLower(v.GetString("IMAGE_PROVIDER")),
		SpoonacularAPIKey:  secret(v, "SPOONACULAR_API_KEY", "spoonacular_api_key"),
		SpoonacularBaseURL: v.GetString("SPOONACULAR_BASE_URL"),
		UnsplashAccessKey:  secret(v, "UNSPLASH_ACCESS_KEY", "unsplash_access_key"),
		UnsplashBaseURL:    v.GetString("UNSPLASH_BASE_URL"),
		ImageCacheTTL:      v.GetDuration("IMAGE_CACHE_TTL"),

		S3BucketName: v.GetString("S3_BUCKET_NAME"),
		AWSRegion:    v.GetString("AWS_REGION"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("LOG_LEVEL", "info")
	if env == Production {
		v.SetDefault("LOG_FORMAT", "json")
	} else {
		v.SetDefault("LOG_FORMAT", "console")
	}

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "recipecrafter")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "recipecrafter.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TOKEN_TTL", 24*time.Hour)

	v.SetDefault("RECIPE_PROVIDER", "openai")
	v.SetDefault("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("RECIPE_RATE_LIMIT", 20)

	v.SetDefault("IMAGE_PROVIDER", "spoonacular")
	v.SetDefault("SPOONACULAR_BASE_URL", "https://api.spoonacular.com")
	v.SetDefault("UNSPLASH_BASE_URL", "https://api.unsplash.com")
	v.SetDefault("IMAGE_CACHE_TTL", 7*24*time.Hour)
}

// secret returns the environment value for key, falling back to the Docker
// secret file of the given name
func secret(v *viper.Viper, key, name string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return readSecret(name)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
