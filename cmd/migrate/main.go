package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/database"
	"github.com/pageza/recipecrafter/backend/internal/logger"
)

func main() {
	// Parse command line flags
	check := flag.Bool("check", false, "Report missing tables without changing the schema")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer func() { _ = zl.Sync() }()

	db, err := database.New(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if *check {
		missing := missingTables(db)
		for _, table := range missing {
			fmt.Printf("missing table: %s\n", table)
		}
		if len(missing) > 0 {
			os.Exit(1)
		}
		fmt.Println("schema is up to date")
		return
	}

	if err := database.RunMigrations(db, zl); err != nil {
		zl.Fatal("Migration failed", zap.Error(err))
	}
	zl.Info("Migrations applied")
}

func missingTables(db *gorm.DB) []string {
	var missing []string
	migrator := db.Migrator()
	for _, model := range database.Models() {
		if migrator.HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			missing = append(missing, fmt.Sprintf("%T", model))
			continue
		}
		missing = append(missing, stmt.Schema.Table)
	}
	return missing
}
