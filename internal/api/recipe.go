package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/service"
)

// RecipeHandler serves stateless recipe generation
type RecipeHandler struct {
	recipes service.IRecipeService
	log     *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, log: log}
}

const recipeRequestKey = "recipe_request"

// RegisterRoutes validates the body before limit runs, so rejected requests
// never spend the caller's quota
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limit ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{h.bindRequest}, limit...)
	router.POST("/generate-recipe", append(handlers, h.GenerateRecipe)...)
}

func (h *RecipeHandler) bindRequest(c *gin.Context) {
	var req service.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Ingredients) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredients list"})
		return
	}
	c.Set(recipeRequestKey, &req)
	c.Next()
}

// GenerateRecipe generates a recipe from the posted ingredient list
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	req := c.MustGet(recipeRequestKey).(*service.RecipeRequest)

	result, err := h.recipes.Generate(c.Request.Context(), *req)
	if err != nil {
		if errors.Is(err, service.ErrNoIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredients list"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": result.Text})
}
