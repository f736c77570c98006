package types

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse carries a freshly issued session token
type TokenResponse struct {
	Token string `json:"token"`
}

// AddPantryItemRequest represents the request body for adding an ingredient.
// Quantity defaults to 1 when omitted.
type AddPantryItemRequest struct {
	Name     string `json:"name" form:"name"`
	Quantity *int   `json:"quantity" form:"quantity"`
}

// UpdatePantryItemRequest represents the request body for editing an
// ingredient; a changed name is a rename
type UpdatePantryItemRequest struct {
	Name  string `json:"name" form:"name" binding:"required"`
	Count *int   `json:"count" form:"count" binding:"required"`
}

// PantryRecipeRequest asks for a recipe built from the caller's pantry
type PantryRecipeRequest struct {
	Guidance string `json:"guidance" form:"guidance"`
}
