package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipecrafter/backend/internal/models"
	"github.com/pageza/recipecrafter/backend/internal/types"
)

// ImageLookup resolves an ingredient name to a representative image URL.
// It returns ErrImageNotFound when the provider has no match.
type ImageLookup interface {
	Lookup(ctx context.Context, ingredient string) (string, error)
}

// ImageProvider is a single third-party image search backend
type ImageProvider interface {
	ImageLookup
	Name() string
}

// ImageCache stores resolved image URLs. Get reports a miss with ok=false.
type ImageCache interface {
	Get(ctx context.Context, ingredient string) (url string, ok bool, err error)
	Set(ctx context.Context, ingredient, url string, ttl time.Duration) error
}

// ObjectStore mirrors fetched images into storage the service controls
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// TextGenerator turns a prompt into completion text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// TokenRevoker remembers signed-out token ids until they would have expired
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IPantryService defines the interface for pantry operations
type IPantryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error)
	Add(ctx context.Context, userID uuid.UUID, name string, quantity int) error
	Rename(ctx context.Context, userID uuid.UUID, oldName, newName string, newCount int) error
	Remove(ctx context.Context, userID uuid.UUID, name string) error
}

// IRecipeService defines the interface for recipe generation
type IRecipeService interface {
	Generate(ctx context.Context, req RecipeRequest) (*RecipeResult, error)
	GenerateFromPantry(ctx context.Context, items []models.PantryItem, guidance string) (*RecipeResult, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
