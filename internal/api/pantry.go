package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/models"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/types"
)

// PantryHandler exposes the caller's pantry. Every mutation answers with the
// stored list so clients never render optimistic state.
type PantryHandler struct {
	pantry      service.IPantryService
	recipes     service.IRecipeService
	validator   middleware.TokenValidator
	recipeLimit []gin.HandlerFunc
	log         *zap.Logger
}

func NewPantryHandler(pantry service.IPantryService, recipes service.IRecipeService, validator middleware.TokenValidator, recipeLimit []gin.HandlerFunc, log *zap.Logger) *PantryHandler {
	return &PantryHandler{
		pantry:      pantry,
		recipes:     recipes,
		validator:   validator,
		recipeLimit: recipeLimit,
		log:         log,
	}
}

func (h *PantryHandler) RegisterRoutes(router *gin.RouterGroup) {
	pantry := router.Group("/pantry")
	pantry.Use(middleware.AuthMiddleware(h.validator))
	{
		pantry.GET("", h.List)
		pantry.POST("", h.Add)
		pantry.PUT("/:name", h.Update)
		pantry.DELETE("/:name", h.Delete)
		recipe := append([]gin.HandlerFunc{h.loadRecipeInput}, h.recipeLimit...)
		pantry.POST("/recipe", append(recipe, h.GenerateRecipe)...)
	}
}

func (h *PantryHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	h.respondList(c, userID)
}

func (h *PantryHandler) Add(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.AddPantryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.pantry.Add(c.Request.Context(), userID, req.Name, quantity); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondList(c, userID)
}

func (h *PantryHandler) Update(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.UpdatePantryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.pantry.Rename(c.Request.Context(), userID, c.Param("name"), req.Name, *req.Count); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondList(c, userID)
}

func (h *PantryHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := h.pantry.Remove(c.Request.Context(), userID, c.Param("name")); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondList(c, userID)
}

// pantryRecipeInput is what loadRecipeInput hands to GenerateRecipe
type pantryRecipeInput struct {
	items    []models.PantryItem
	guidance string
}

const pantryRecipeKey = "pantry_recipe"

// loadRecipeInput rejects a bad body or an empty pantry before the rate
// limiter runs
func (h *PantryHandler) loadRecipeInput(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.PantryRecipeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	items, err := h.pantry.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		c.Abort()
		return
	}
	if len(items) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Your pantry is empty"})
		return
	}

	c.Set(pantryRecipeKey, &pantryRecipeInput{items: items, guidance: req.Guidance})
	c.Next()
}

// GenerateRecipe generates a recipe from everything currently in the pantry
func (h *PantryHandler) GenerateRecipe(c *gin.Context) {
	in := c.MustGet(pantryRecipeKey).(*pantryRecipeInput)

	result, err := h.recipes.GenerateFromPantry(c.Request.Context(), in.items, in.guidance)
	if err != nil {
		if errors.Is(err, service.ErrNoIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your pantry is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": result.Text})
}

func (h *PantryHandler) respondList(c *gin.Context, userID uuid.UUID) {
	items, err := h.pantry.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PantryHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateItem):
		c.JSON(http.StatusConflict, gin.H{"error": "An ingredient with this name already exists."})
	case errors.Is(err, service.ErrEmptyName), errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("Pantry operation failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update pantry"})
	}
}
