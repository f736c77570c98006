package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/service"
)

// Dependencies carries the services the JSON API is built from
type Dependencies struct {
	DB      *gorm.DB
	Auth    service.IAuthService
	Pantry  service.IPantryService
	Recipes service.IRecipeService
	Images  service.ImageLookup
	// RecipeLimiter throttles recipe generation; nil disables it
	RecipeLimiter middleware.Limiter
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "RecipeCrafter API is running",
		})
	}
}

// MethodNotAllowed answers requests whose path exists under another method
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)

	router.GET("/health", HealthCheck(deps.DB))
	router.GET("/api/health", HealthCheck(deps.DB))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var recipeLimit []gin.HandlerFunc
	if deps.RecipeLimiter != nil {
		recipeLimit = append(recipeLimit, middleware.RateLimit(deps.RecipeLimiter, deps.Log))
	}

	recipeHandler := NewRecipeHandler(deps.Recipes, deps.Log)
	imageHandler := NewImageHandler(deps.Images, deps.Log)
	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	pantryHandler := NewPantryHandler(deps.Pantry, deps.Recipes, deps.Auth, recipeLimit, deps.Log)

	public := router.Group("/api")
	public.Use(middleware.OptionalAuth(deps.Auth))
	recipeHandler.RegisterRoutes(public, recipeLimit...)
	imageHandler.RegisterRoutes(public)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	pantryHandler.RegisterRoutes(v1)
}
