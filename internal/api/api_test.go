package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/testhelpers"
	"github.com/pageza/recipecrafter/backend/internal/types"
)

type stubImages struct {
	urls map[string]string
	err  error
}

func (s *stubImages) Lookup(_ context.Context, ingredient string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if url, ok := s.urls[service.NormalizeName(ingredient)]; ok {
		return url, nil
	}
	return "", service.ErrImageNotFound
}

// stubGenerator records prompts and returns a canned recipe
type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return "Recipe Name: Test Dish", nil
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type testEnv struct {
	router    *gin.Engine
	auth      *service.AuthService
	generator *stubGenerator
	images    *stubImages
}

func setupTestRouter(t *testing.T, limiter middleware.Limiter) *testEnv {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	m := metrics.New()

	images := &stubImages{urls: map[string]string{
		"egg":  "https://img.test/egg.png",
		"eggs": "https://img.test/eggs.png",
	}}
	generator := &stubGenerator{}
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, log)

	router := gin.New()
	router.Use(m.Middleware())
	RegisterRoutes(router, Dependencies{
		DB:            db,
		Auth:          auth,
		Pantry:        service.NewPantryService(db, images, log, m),
		Recipes:       service.NewRecipeService(generator, log, m),
		Images:        images,
		RecipeLimiter: limiter,
		Metrics:       m,
		Log:           log,
	})

	return &testEnv{router: router, auth: auth, generator: generator, images: images}
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	_, token, err := e.auth.Register(context.Background(), types.RegisterRequest{
		Name: "Tester", Email: email, Password: "password123",
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type pantryResponse struct {
	Items []struct {
		Name     string `json:"name"`
		Count    int    `json:"count"`
		ImageURL string `json:"imageUrl"`
	} `json:"items"`
}

func decodePantry(t *testing.T, w *httptest.ResponseRecorder) map[string]int {
	t.Helper()
	var resp pantryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	out := make(map[string]int, len(resp.Items))
	for _, item := range resp.Items {
		out[item.Name] = item.Count
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	env := setupTestRouter(t, nil)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.do(t, http.MethodGet, "/health", "", nil)

	w := env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recipecrafter_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestGenerateRecipe(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodPost, "/api/generate-recipe", "", `{
		"ingredients": [{"name": "egg", "quantity": 2}, {"name": "milk", "quantity": "1"}],
		"additionalInput": "quick"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipe":"Recipe Name: Test Dish"}`, w.Body.String())
	require.Equal(t, 1, env.generator.Calls())
	assert.Contains(t, env.generator.prompts[0], "2 of egg, 1 of milk")
}

func TestGenerateRecipeValidation(t *testing.T) {
	env := setupTestRouter(t, nil)

	for _, body := range []string{`{}`, `{"ingredients": []}`, `{"ingredients": "egg"}`, `not json`, ``} {
		w := env.do(t, http.MethodPost, "/api/generate-recipe", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Invalid ingredients list"}`, w.Body.String())
	}
	assert.Zero(t, env.generator.Calls(), "no upstream call for invalid input")
}

func TestGenerateRecipeMethodNotAllowed(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodGet, "/api/generate-recipe", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, w.Body.String())
}

func TestGenerateRecipeUpstreamFailure(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.generator.err = errors.New("quota exceeded")

	w := env.do(t, http.MethodPost, "/api/generate-recipe", "", `{"ingredients":[{"name":"egg","quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to generate recipe"}`, w.Body.String())
}

func TestGenerateRecipeRateLimited(t *testing.T) {
	env := setupTestRouter(t, middleware.NewLocalLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}))
	body := `{"ingredients":[{"name":"egg","quantity":1}]}`

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/generate-recipe", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/generate-recipe", "", body).Code)
	assert.Equal(t, 1, env.generator.Calls())
}

func TestGenerateRecipeValidatesBeforeRateLimit(t *testing.T) {
	env := setupTestRouter(t, middleware.NewLocalLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}))
	valid := `{"ingredients":[{"name":"egg","quantity":1}]}`

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/generate-recipe", "", `{"ingredients":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/generate-recipe", "", valid).Code)

	// Over the limit, a malformed request still gets its validation error
	w := env.do(t, http.MethodPost, "/api/generate-recipe", "", `{"ingredients":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid ingredients list"}`, w.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/generate-recipe", "", valid).Code)
}

func TestPantryRecipeEmptyPantrySkipsRateLimit(t *testing.T) {
	env := setupTestRouter(t, middleware.NewLocalLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}))
	token := env.token(t, "cook@example.com")

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/pantry/recipe", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Your pantry is empty"}`, w.Body.String())
	}

	env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "egg", "quantity": 1})
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/pantry/recipe", token, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/v1/pantry/recipe", token, nil).Code)
}

func TestGetIngredientImage(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodGet, "/api/get-ingredient-image?ingredient=Egg", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imageUrl":"https://img.test/egg.png"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/get-ingredient-image?ingredient=unobtainium", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No image found"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/get-ingredient-image?ingredient=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.images.err = service.ErrImageLookupFailed
	w = env.do(t, http.MethodGet, "/api/get-ingredient-image?ingredient=egg", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error fetching image"}`, w.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sam@example.com")

	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPantryRequiresAuth(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/pantry", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/pantry", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPantryCRUD(t *testing.T) {
	env := setupTestRouter(t, nil)
	token := env.token(t, "cook@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "Egg", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"egg": 2}, decodePantry(t, w))

	w = env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "egg", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"egg": 5}, decodePantry(t, w))

	w = env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "milk"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"egg": 5, "milk": 1}, decodePantry(t, w))

	w = env.do(t, http.MethodPut, "/api/v1/pantry/egg", token, map[string]interface{}{"name": "Milk", "count": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"An ingredient with this name already exists."}`, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/v1/pantry/egg", token, map[string]interface{}{"name": "eggs", "count": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"eggs": 5, "milk": 1}, decodePantry(t, w))
	assert.Contains(t, w.Body.String(), "https://img.test/eggs.png")

	w = env.do(t, http.MethodPut, "/api/v1/pantry/eggs", token, map[string]interface{}{"name": "eggs", "count": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/pantry/eggs", token, map[string]interface{}{"name": "eggs"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/pantry/eggs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/pantry/eggs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"milk": 1}, decodePantry(t, w))
}

func TestPantryAddNegativeQuantity(t *testing.T) {
	env := setupTestRouter(t, nil)
	token := env.token(t, "cook@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "egg", "quantity": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPantryIsPerUser(t *testing.T) {
	env := setupTestRouter(t, nil)
	alice := env.token(t, "alice@example.com")
	bob := env.token(t, "bob@example.com")

	env.do(t, http.MethodPost, "/api/v1/pantry", alice, map[string]interface{}{"name": "egg", "quantity": 2})

	w := env.do(t, http.MethodGet, "/api/v1/pantry", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodePantry(t, w))
}

func TestPantryRecipe(t *testing.T) {
	env := setupTestRouter(t, nil)
	token := env.token(t, "cook@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/pantry/recipe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.generator.Calls())

	env.do(t, http.MethodPost, "/api/v1/pantry", token, map[string]interface{}{"name": "egg", "quantity": 4})
	w = env.do(t, http.MethodPost, "/api/v1/pantry/recipe", token, map[string]string{"guidance": "spicy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipe":"Recipe Name: Test Dish"}`, w.Body.String())
	require.Equal(t, 1, env.generator.Calls())
	assert.True(t, strings.Contains(env.generator.prompts[0], "4 of egg"))
	assert.Contains(t, env.generator.prompts[0], "spicy")
}
