package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", `2`, "2"},
		{"fraction", `1.5`, "1.5"},
		{"string", `"3 cups"`, "3 cups"},
		{"padded string", `" 4 "`, "4"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestQuantityRejectsObjects(t *testing.T) {
	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`{"amount":2}`), &q))
}

func TestIngredientDecodesMixedQuantities(t *testing.T) {
	var req RecipeRequest
	body := `{"ingredients":[{"name":"egg","quantity":2},{"name":"milk","quantity":"1"}],"additionalInput":"quick"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Ingredients, 2)
	assert.Equal(t, "2", req.Ingredients[0].Quantity.String())
	assert.Equal(t, "1", req.Ingredients[1].Quantity.String())
	assert.Equal(t, "quick", req.Guidance)
}
