package models

import (
	"time"

	"github.com/google/uuid"
)

// PantryItem is one ingredient in a user's pantry. Name is stored trimmed and
// lower-cased and together with UserID forms the primary key, so names are
// unique per user regardless of case.
type PantryItem struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"-"`
	Name      string    `gorm:"size:100;primaryKey" json:"name"`
	Count     int       `gorm:"not null;default:0;check:chk_pantry_items_count,count >= 0" json:"count"`
	ImageURL  *string   `gorm:"size:512" json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Image returns the image URL or an empty string when none was found
func (p PantryItem) Image() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}
