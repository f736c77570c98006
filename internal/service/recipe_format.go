package service

import (
	"regexp"
	"strings"
)

// Recipe is a generated recipe split into its template sections. Text that
// does not follow the template is still available in Raw.
type Recipe struct {
	Name                  string
	Ingredients           []string
	AdditionalIngredients []string
	Instructions          []string
	Nutrition             []string
	Raw                   string
}

type recipeSection int

const (
	sectionNone recipeSection = iota
	sectionIngredients
	sectionAdditional
	sectionInstructions
	sectionNutrition
)

var (
	listMarker    = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)
	headingMarker = regexp.MustCompile(`^[#*\s]+|[*\s]+$`)
)

// ParseRecipe splits recipe text into sections. It never fails; unknown lines
// before the first heading are ignored and lines under a heading are kept in
// order with list markers removed.
func ParseRecipe(text string) Recipe {
	r := Recipe{Raw: strings.TrimSpace(text)}
	current := sectionNone

	for _, line := range strings.Split(r.Raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "..." {
			continue
		}

		heading := headingMarker.ReplaceAllString(line, "")
		lower := strings.ToLower(heading)
		switch {
		case strings.HasPrefix(lower, "recipe name:"):
			r.Name = strings.TrimSpace(strings.Trim(heading[len("recipe name:"):], "*"))
			current = sectionNone
			continue
		case strings.HasPrefix(lower, "additional ingredients"):
			current = sectionAdditional
			continue
		case strings.HasPrefix(lower, "ingredients:"):
			current = sectionIngredients
			continue
		case strings.HasPrefix(lower, "instructions:"):
			current = sectionInstructions
			continue
		case strings.HasPrefix(lower, "rough nutritional content"), strings.HasPrefix(lower, "nutritional content"):
			current = sectionNutrition
			continue
		}

		item := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		switch current {
		case sectionIngredients:
			r.Ingredients = append(r.Ingredients, item)
		case sectionAdditional:
			r.AdditionalIngredients = append(r.AdditionalIngredients, item)
		case sectionInstructions:
			r.Instructions = append(r.Instructions, item)
		case sectionNutrition:
			r.Nutrition = append(r.Nutrition, item)
		}
	}

	return r
}

// Structured reports whether any template section was recognised
func (r Recipe) Structured() bool {
	return r.Name != "" || len(r.Ingredients) > 0 || len(r.Instructions) > 0
}
