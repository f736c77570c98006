package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/service"
)

// ImageHandler resolves ingredient images
type ImageHandler struct {
	images service.ImageLookup
	log    *zap.Logger
}

func NewImageHandler(images service.ImageLookup, log *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, log: log}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/get-ingredient-image", h.GetIngredientImage)
}

// GetIngredientImage returns an image URL for the ingredient query parameter
func (h *ImageHandler) GetIngredientImage(c *gin.Context) {
	ingredient := strings.TrimSpace(c.Query("ingredient"))
	if ingredient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient is required"})
		return
	}

	imageURL, err := h.images.Lookup(c.Request.Context(), ingredient)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No image found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}
