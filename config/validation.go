package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a Config
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be set"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST/DB_NAME", "required for the postgres driver"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.RecipeProvider {
	case "openai", "gemini":
	default:
		errs = append(errs, ValidationError{"RECIPE_PROVIDER", fmt.Sprintf("unsupported provider %q", cfg.RecipeProvider)})
	}

	switch cfg.ImageProvider {
	case "spoonacular", "unsplash":
	default:
		errs = append(errs, ValidationError{"IMAGE_PROVIDER", fmt.Sprintf("unsupported provider %q", cfg.ImageProvider)})
	}

	if cfg.RecipeRateLimit < 0 {
		errs = append(errs, ValidationError{"RECIPE_RATE_LIMIT", "must not be negative"})
	}

	// Secrets are only enforced where a missing one would silently break users
	if cfg.Environment == Production {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			errs = append(errs, ValidationError{"JWT_SECRET", "a non-default secret is required in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "required in production"})
		}
		if cfg.RecipeProvider == "openai" && cfg.OpenAIAPIKey == "" {
			errs = append(errs, ValidationError{"OPENAI_API_KEY", "required in production"})
		}
		if cfg.RecipeProvider == "gemini" && cfg.GeminiAPIKey == "" {
			errs = append(errs, ValidationError{"GEMINI_API_KEY", "required in production"})
		}
		if cfg.ImageProvider == "spoonacular" && cfg.SpoonacularAPIKey == "" {
			errs = append(errs, ValidationError{"SPOONACULAR_API_KEY", "required in production"})
		}
		if cfg.ImageProvider == "unsplash" && cfg.UnsplashAccessKey == "" {
			errs = append(errs, ValidationError{"UNSPLASH_ACCESS_KEY", "required in production"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
