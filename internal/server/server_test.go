package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/api"
	"github.com/pageza/recipecrafter/backend/internal/metrics"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/testhelpers"
	"github.com/pageza/recipecrafter/backend/internal/view"
	"github.com/pageza/recipecrafter/backend/internal/web"
)

type echoGenerator struct{}

func (echoGenerator) Generate(context.Context, string) (string, error) { return "Recipe Name: Toast", nil }
func (echoGenerator) Name() string { return "echo" }

func newTestServer(t *testing.T) *Server {
	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	m := metrics.New()

	cfg := &config.Config{
		Environment:    config.Test,
		ServerHost:     "127.0.0.1",
		ServerPort:     "0",
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, log)
	pantry := service.NewPantryService(db, nil, log, m)
	recipes := service.NewRecipeService(echoGenerator{}, log, m)
	site := web.NewHandler(auth, pantry, recipes, view.NewStore(), web.Options{TokenTTL: time.Hour}, log)

	srv, err := New(cfg, api.Dependencies{
		DB:      db,
		Auth:    auth,
		Pantry:  pantry,
		Recipes: recipes,
		Metrics: m,
		Log:     log,
	}, site)
	require.NoError(t, err)
	return srv
}

func TestNew(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"api health", http.MethodGet, "/api/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"login page", http.MethodGet, "/", http.StatusOK},
		{"pantry requires a token", http.MethodGet, "/api/v1/pantry", http.StatusUnauthorized},
		{"pages require a session", http.MethodGet, "/pantry", http.StatusSeeOther},
		{"wrong method", http.MethodGet, "/api/generate-recipe", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-recipe", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
