package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/models"
)

// PantryService manages the per-user ingredient inventory
type PantryService struct {
	db      *gorm.DB
	images  ImageLookup
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewPantryService creates a new PantryService. images may be nil, in which
// case new items are stored without an image.
func NewPantryService(db *gorm.DB, images ImageLookup, log *zap.Logger, m *metrics.Metrics) *PantryService {
	return &PantryService{
		db:      db,
		images:  images,
		log:     log,
		metrics: m,
	}
}

// NormalizeName returns the key an ingredient is stored under
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// List returns every item in the user's pantry ordered by name
func (s *PantryService) List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error) {
	var items []models.PantryItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list pantry: %w", err)
	}
	return items, nil
}

// Add increases the count of an ingredient, creating it when absent. A blank
// name is ignored.
func (s *PantryService) Add(ctx context.Context, userID uuid.UUID, name string, quantity int) error {
	key := NormalizeName(name)
	if key == "" {
		return nil
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	db := s.db.WithContext(ctx)

	res := db.Model(&models.PantryItem{}).
		Where("user_id = ? AND name = ?", userID, key).
		Update("count", gorm.Expr("count + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to increment pantry item: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.metrics.PantryMutation("add")
		return nil
	}

	item := models.PantryItem{
		UserID:   userID,
		Name:     key,
		Count:    quantity,
		ImageURL: s.lookupImage(ctx, key),
	}

	// A concurrent add may have created the row since the update above
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("pantry_items.count + excluded.count"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add pantry item: %w", err)
	}

	s.metrics.PantryMutation("add")
	s.log.Debug("Added pantry item",
		zap.String("user_id", userID.String()),
		zap.String("name", key),
		zap.Int("quantity", quantity),
	)
	return nil
}

// Rename replaces oldName with newName holding newCount. The image is fetched
// again only when the normalized name changes. Renaming onto another existing
// ingredient fails with ErrDuplicateItem and leaves both untouched.
func (s *PantryService) Rename(ctx context.Context, userID uuid.UUID, oldName, newName string, newCount int) error {
	newKey := NormalizeName(newName)
	if newKey == "" {
		return ErrEmptyName
	}
	if newCount < 0 {
		return ErrInvalidQuantity
	}
	oldKey := NormalizeName(oldName)
	renamed := newKey != oldKey

	db := s.db.WithContext(ctx)

	var image *string
	if renamed {
		taken, err := s.exists(db, userID, newKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateItem
		}
		image = s.lookupImage(ctx, newKey)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if renamed {
			taken, err := s.exists(tx, userID, newKey)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateItem
			}
		} else {
			var current models.PantryItem
			res := tx.Where("user_id = ? AND name = ?", userID, oldKey).Limit(1).Find(&current)
			if res.Error != nil {
				return fmt.Errorf("failed to load pantry item: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				image = current.ImageURL
			}
		}

		if err := tx.Where("user_id = ? AND name = ?", userID, oldKey).
			Delete(&models.PantryItem{}).Error; err != nil {
			return fmt.Errorf("failed to remove old pantry item: %w", err)
		}

		item := models.PantryItem{
			UserID:   userID,
			Name:     newKey,
			Count:    newCount,
			ImageURL: image,
		}
		if err := tx.Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateItem
			}
			return fmt.Errorf("failed to create renamed pantry item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.PantryMutation("rename")
	s.log.Debug("Renamed pantry item",
		zap.String("user_id", userID.String()),
		zap.String("from", oldKey),
		zap.String("to", newKey),
		zap.Int("count", newCount),
	)
	return nil
}

// Remove deletes an ingredient. Removing a missing ingredient is not an error.
func (s *PantryService) Remove(ctx context.Context, userID uuid.UUID, name string) error {
	key := NormalizeName(name)
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, key).
		Delete(&models.PantryItem{}).Error; err != nil {
		return fmt.Errorf("failed to remove pantry item: %w", err)
	}
	s.metrics.PantryMutation("remove")
	return nil
}

func (s *PantryService) exists(db *gorm.DB, userID uuid.UUID, key string) (bool, error) {
	var n int64
	if err := db.Model(&models.PantryItem{}).
		Where("user_id = ? AND name = ?", userID, key).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check pantry item: %w", err)
	}
	return n > 0, nil
}

// lookupImage resolves an image for a new ingredient. Failures are logged and
// the item is stored without one.
func (s *PantryService) lookupImage(ctx context.Context, name string) *string {
	if s.images == nil {
		return nil
	}
	url, err := s.images.Lookup(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrImageNotFound) {
			s.log.Warn("Image lookup failed", zap.String("ingredient", name), zap.Error(err))
		}
		return nil
	}
	if url == "" {
		return nil
	}
	return &url
}
