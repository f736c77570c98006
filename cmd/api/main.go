package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/api"
	"github.com/pageza/recipecrafter/backend/internal/database"
	"github.com/pageza/recipecrafter/backend/internal/logger"
	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/server"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/view"
	"github.com/pageza/recipecrafter/backend/internal/web"
)

func main() {
	// A missing .env file is fine outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment != config.Production,
	})
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	db, err := database.New(cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zl.Warn("Failed to close database", zap.Error(err))
		}
	}()
	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(db, zl); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg, zl)
		if err != nil {
			zl.Warn("Redis unavailable, continuing without cache, revocation and shared rate limits", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	m := metrics.New()

	images, err := newImageService(ctx, cfg, redisClient, zl, m)
	if err != nil {
		return err
	}

	generator, err := service.NewTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := generator.(io.Closer); ok {
		defer closer.Close()
	}

	var revoker service.TokenRevoker
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
	}

	var limiter middleware.Limiter
	if cfg.RecipeRateLimit > 0 {
		limiter = middleware.NewRecipeRateLimiter(redisClient, cfg.RecipeRateLimit)
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, revoker, zl)
	pantry := service.NewPantryService(db, images, zl, m)
	recipes := service.NewRecipeService(generator, zl, m)

	site := web.NewHandler(auth, pantry, recipes, view.NewStore(), web.Options{
		TokenTTL:      cfg.TokenTTL,
		SecureCookies: cfg.Environment == config.Production,
	}, zl)

	srv, err := server.New(cfg, api.Dependencies{
		DB:            db,
		Auth:          auth,
		Pantry:        pantry,
		Recipes:       recipes,
		Images:        images,
		RecipeLimiter: limiter,
		Metrics:       m,
		Log:           zl,
	}, site)
	if err != nil {
		return err
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		zl.Info("Received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zl.Info("Server stopped")
	return nil
}

func newImageService(ctx context.Context, cfg *config.Config, redisClient *redis.Client, zl *zap.Logger, m *metrics.Metrics) (*service.ImageService, error) {
	provider, err := service.NewImageProvider(cfg)
	if err != nil {
		return nil, err
	}

	var opts []service.ImageServiceOption
	if redisClient != nil {
		opts = append(opts, service.WithImageCache(service.NewRedisImageCache(redisClient), cfg.ImageCacheTTL))
	}

	store, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, service.WithObjectStore(store))
	}

	return service.NewImageService(provider, zl, m, opts...), nil
}
