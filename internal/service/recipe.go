package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/models"
)

// Ingredient is one line of a recipe request
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
}

// RecipeRequest lists the ingredients on hand plus free-text guidance
type RecipeRequest struct {
	Ingredients []Ingredient `json:"ingredients"`
	Guidance    string       `json:"additionalInput"`
}

// RecipeResult holds the generated recipe text
type RecipeResult struct {
	Text string `json:"recipe"`
}

const recipeFormat = `Format the response as follows:
Recipe Name:
Ingredients:
- ingredient 1
- ingredient 2
Additional Ingredients (optional):
- additional ingredient 1
- additional ingredient 2
...
Instructions:
1. Step 1
2. Step 2
...
Rough Nutritional Content:
- Calories:
- Protein:`

// BuildRecipePrompt renders the generation prompt for a set of ingredients
func BuildRecipePrompt(ingredients []Ingredient, guidance string) string {
	parts := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		parts = append(parts, fmt.Sprintf("%s of %s", ing.Quantity, strings.TrimSpace(ing.Name)))
	}

	guidance = strings.TrimSpace(guidance)
	if guidance == "" {
		guidance = "None"
	}

	var sb strings.Builder
	sb.WriteString("Generate a simple recipe designed for students with little to no cooking knowledge using some or all of these ingredients: ")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(".\nYou may assume they have simple ingredients such as oil, seasoning like salt and pepper, etc. ")
	sb.WriteString("Additionally, focus on creating cohesive, understandable recipes. ")
	sb.WriteString("DO NOT try and incorporate ingredients if they do not belong. ")
	sb.WriteString("Finally, the following is additional input to help guide the recipe generation: ")
	sb.WriteString(guidance)
	sb.WriteString("\n")
	sb.WriteString(recipeFormat)
	return sb.String()
}

// RecipeService builds prompts and forwards them to a text generator
type RecipeService struct {
	generator TextGenerator
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// NewRecipeService creates a new RecipeService
func NewRecipeService(generator TextGenerator, log *zap.Logger, m *metrics.Metrics) *RecipeService {
	return &RecipeService{
		generator: generator,
		log:       log,
		metrics:   m,
	}
}

// NewTextGenerator returns the generator selected by RECIPE_PROVIDER
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.RecipeProvider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel), nil
	case "gemini":
		gen, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported recipe provider %q", cfg.RecipeProvider)
	}
}

// Generate produces a recipe for the request. An empty ingredient list fails
// with ErrNoIngredients before any upstream call; every upstream failure is
// reported as ErrGenerationFailed.
func (s *RecipeService) Generate(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	if len(req.Ingredients) == 0 {
		return nil, ErrNoIngredients
	}

	prompt := BuildRecipePrompt(req.Ingredients, req.Guidance)
	provider := s.generator.Name()

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.metrics.RecipeGeneration(provider, metrics.OutcomeError)
		s.log.Error("Error generating recipe", zap.String("provider", provider), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.RecipeGeneration(provider, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	s.metrics.RecipeGeneration(provider, metrics.OutcomeSuccess)
	s.log.Info("Generated recipe",
		zap.String("provider", provider),
		zap.Int("ingredients", len(req.Ingredients)),
	)
	return &RecipeResult{Text: text}, nil
}

// GenerateFromPantry generates a recipe from the items currently in a pantry
func (s *RecipeService) GenerateFromPantry(ctx context.Context, items []models.PantryItem, guidance string) (*RecipeResult, error) {
	ingredients := make([]Ingredient, 0, len(items))
	for _, item := range items {
		ingredients = append(ingredients, Ingredient{Name: item.Name, Quantity: QuantityOf(item.Count)})
	}
	return s.Generate(ctx, RecipeRequest{Ingredients: ingredients, Guidance: guidance})
}
