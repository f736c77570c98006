package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/database"
	"github.com/pageza/recipecrafter/backend/internal/models"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/types"
)

const seedPassword = "testpassword123"

type seedItem struct {
	name     string
	quantity int
}

var seedUsers = []struct {
	name   string
	email  string
	pantry []seedItem
}{
	{
		name:  "John Doe",
		email: "john.doe@example.com",
		pantry: []seedItem{
			{"eggs", 6}, {"milk", 1}, {"butter", 1}, {"bread", 1},
		},
	},
	{
		name:  "Jane Smith",
		email: "jane.smith@example.com",
		pantry: []seedItem{
			{"chicken breast", 2}, {"rice", 1}, {"broccoli", 1}, {"garlic", 3}, {"soy sauce", 1},
		},
	},
	{
		name:   "Empty Pantry",
		email:  "empty@example.com",
		pantry: nil,
	},
}

func main() {
	withImages := flag.Bool("images", false, "Look up ingredient images with the configured provider")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := zap.NewNop()
	db, err := database.New(cfg, zl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()
	if err := database.RunMigrations(db, zl); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	var images service.ImageLookup
	if *withImages {
		provider, err := service.NewImageProvider(cfg)
		if err != nil {
			log.Fatalf("Failed to configure image provider: %v", err)
		}
		images = service.NewImageService(provider, zl, nil)
	}

	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, nil, zl)
	pantry := service.NewPantryService(db, images, zl, nil)

	log.Println("Creating test users with sample pantries...")

	for _, u := range seedUsers {
		user, _, err := auth.Register(ctx, types.RegisterRequest{Name: u.name, Email: u.email, Password: seedPassword})
		if errors.Is(err, service.ErrUserExists) {
			log.Printf("User %s already exists, skipping...", u.email)
			continue
		}
		if err != nil {
			log.Printf("Failed to create user %s: %v", u.email, err)
			continue
		}

		for _, item := range u.pantry {
			if err := pantry.Add(ctx, user.ID, item.name, item.quantity); err != nil {
				log.Printf("Failed to add %s for %s: %v", item.name, u.email, err)
			}
		}
		log.Printf("✅ Created user: %s (%s) with %d pantry items", u.name, u.email, len(u.pantry))
	}

	var userCount, itemCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.PantryItem{}).Count(&itemCount)

	log.Println("\n📋 Seed Summary:")
	log.Println("======================")
	log.Printf("📧 Total users: %d", userCount)
	log.Printf("🥚 Total pantry items: %d", itemCount)

	log.Println("\n🔑 Test Credentials:")
	log.Println("Email: Any of the above emails")
	log.Printf("Password: %s", seedPassword)
}
