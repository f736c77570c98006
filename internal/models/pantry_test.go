package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&User{}, &PantryItem{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestUserBeforeCreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	user := &User{Name: "Test", Email: "test@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("User ID should be set after creation")
	}
}

func TestPantryItemKeyIsPerUser(t *testing.T) {
	db := setupTestDB(t)
	alice, bob := uuid.New(), uuid.New()

	if err := db.Create(&PantryItem{UserID: alice, Name: "egg", Count: 2}).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	if err := db.Create(&PantryItem{UserID: bob, Name: "egg", Count: 1}).Error; err != nil {
		t.Fatalf("Same name for another user should be allowed: %v", err)
	}
	if err := db.Create(&PantryItem{UserID: alice, Name: "egg", Count: 9}).Error; err == nil {
		t.Error("Duplicate key for the same user should be rejected")
	}
}

func TestPantryItemRejectsNegativeCount(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&PantryItem{UserID: uuid.New(), Name: "milk", Count: -1}).Error; err == nil {
		t.Error("Negative count should violate the check constraint")
	}
}

func TestPantryItemImage(t *testing.T) {
	url := "https://img.test/egg.png"
	if got := (PantryItem{ImageURL: &url}).Image(); got != url {
		t.Errorf("Image() = %q, want %q", got, url)
	}
	if got := (PantryItem{}).Image(); got != "" {
		t.Errorf("Image() = %q, want empty", got)
	}
}
