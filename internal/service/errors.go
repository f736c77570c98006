package service

import "errors"

// Pantry errors
var (
	ErrEmptyName       = errors.New("ingredient name is required")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrDuplicateItem   = errors.New("an ingredient with this name already exists")
)

// Recipe errors
var (
	ErrNoIngredients    = errors.New("invalid ingredients list")
	ErrGenerationFailed = errors.New("failed to generate recipe")
)

// Image errors
var (
	ErrImageNotFound     = errors.New("no image found")
	ErrImageLookupFailed = errors.New("error fetching image")
)

// Auth errors
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
