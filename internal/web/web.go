package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/service"
	"github.com/pageza/recipecrafter/backend/internal/types"
	"github.com/pageza/recipecrafter/backend/internal/view"
)

//go:embed templates
var templateFS embed.FS

// Login page error codes carried in the query string
const (
	errCredentials = "credentials"
	errExists      = "exists"
	errInvalid     = "invalid"
	errServer      = "server"
)

var loginErrors = map[string]string{
	errCredentials: "Invalid email or password.",
	errExists:      "An account with this email already exists.",
	errInvalid:     "Please fill in every field. Passwords need at least 6 characters.",
	errServer:      "Something went wrong. Please try again.",
}

// Handler serves the server-rendered pantry pages
type Handler struct {
	auth          service.IAuthService
	pantry        service.IPantryService
	recipes       service.IRecipeService
	views         *view.Store
	tokenTTL      time.Duration
	secureCookies bool
	log           *zap.Logger
}

// Options configures the session cookie
type Options struct {
	TokenTTL      time.Duration
	SecureCookies bool
}

func NewHandler(auth service.IAuthService, pantry service.IPantryService, recipes service.IRecipeService, views *view.Store, opts Options, log *zap.Logger) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &Handler{
		auth:          auth,
		pantry:        pantry,
		recipes:       recipes,
		views:         views,
		tokenTTL:      opts.TokenTTL,
		secureCookies: opts.SecureCookies,
		log:           log,
	}
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// RegisterRoutes installs the page templates and routes on the engine
func (h *Handler) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return err
	}
	router.GET("/static/app.css", func(c *gin.Context) {
		c.FileFromFS("app.css", http.FS(static))
	})

	router.GET("/", h.Home)
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/logout", h.Logout)

	pages := router.Group("/", h.requireSession)
	{
		pages.GET("/pantry", h.Pantry)
		pages.POST("/pantry/add/open", h.OpenAdd)
		pages.POST("/pantry/add/cancel", h.CancelAdd)
		pages.POST("/pantry/add", h.Add)
		pages.POST("/pantry/edit", h.BeginEdit)
		pages.POST("/pantry/edit/cancel", h.CancelEdit)
		pages.POST("/pantry/edit/save", h.SaveEdit)
		pages.POST("/pantry/delete", h.Delete)
		pages.POST("/recipe/open", h.OpenRecipe)
		pages.POST("/recipe/cancel", h.CancelRecipe)
		pages.POST("/recipe/generate", h.Generate)
		pages.POST("/recipe/close", h.CloseRecipe)
	}
	return nil
}

// requireSession sends visitors without a valid session cookie to the
// sign-in page
func (h *Handler) requireSession(c *gin.Context) {
	claims, ok := h.session(c)
	if !ok {
		h.clearCookie(c)
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}
	c.Set(middleware.ContextUserID, claims.UserID)
	c.Set(middleware.ContextClaims, claims)
	c.Next()
}

func (h *Handler) session(c *gin.Context) (*types.TokenClaims, bool) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := h.auth.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookies, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
}

func backToPantry(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/pantry")
}

func loginFailed(c *gin.Context, code string) {
	c.Redirect(http.StatusSeeOther, "/?error="+code)
}

// Home renders the sign-in page, or the pantry for a signed-in visitor
func (h *Handler) Home(c *gin.Context) {
	if _, ok := h.session(c); ok {
		backToPantry(c)
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Error": loginErrors[c.Query("error")],
		"Email": c.Query("email"),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		loginFailed(c, errInvalid)
		return
	}

	_, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			loginFailed(c, errCredentials)
			return
		}
		h.log.Error("Sign-in failed", zap.Error(err))
		loginFailed(c, errServer)
		return
	}

	h.setCookie(c, token)
	backToPantry(c)
}

func (h *Handler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		loginFailed(c, errInvalid)
		return
	}

	_, token, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			loginFailed(c, errExists)
			return
		}
		h.log.Error("Registration failed", zap.Error(err))
		loginFailed(c, errServer)
		return
	}

	h.setCookie(c, token)
	backToPantry(c)
}

// Logout revokes the session token, drops the view state and returns to the
// sign-in page
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := h.session(c); ok {
		if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
			h.log.Warn("Failed to revoke session", zap.Error(err))
		}
		h.views.Delete(claims.UserID)
	}
	h.clearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// Pantry renders the pantry grid with whatever modal the session has open
func (h *Handler) Pantry(c *gin.Context) {
	userID := mustUser(c)
	items, err := h.pantry.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to load pantry", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load your pantry")
		return
	}

	snap := h.views.Render(userID)
	data := gin.H{
		"Items": items,
		"View":  snap,
	}
	if snap.Mode == view.RecipeShown {
		recipe := service.ParseRecipe(snap.Recipe)
		data["Recipe"] = &recipe
	}
	c.HTML(http.StatusOK, "pantry.html", data)
}

func (h *Handler) OpenAdd(c *gin.Context) {
	h.update(c, (*view.Session).OpenAddModal)
	backToPantry(c)
}

func (h *Handler) CancelAdd(c *gin.Context) {
	h.update(c, (*view.Session).CloseAddModal)
	backToPantry(c)
}

// Add stores the submitted ingredient and closes the modal. The form never
// adds fewer than one.
func (h *Handler) Add(c *gin.Context) {
	userID := mustUser(c)
	var req types.AddPantryItemRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug("Rejected add form", zap.Error(err))
		h.alert(c, "Quantity must be a whole number.")
		backToPantry(c)
		return
	}

	quantity := 1
	if req.Quantity != nil && *req.Quantity > 1 {
		quantity = *req.Quantity
	}

	if err := h.pantry.Add(c.Request.Context(), userID, req.Name, quantity); err != nil {
		h.log.Error("Failed to add pantry item", zap.Error(err))
		h.alert(c, "Failed to add the ingredient. Please try again.")
	}
	h.update(c, (*view.Session).CloseAddModal)
	backToPantry(c)
}

// BeginEdit puts the named card into edit mode, seeded with its stored count
func (h *Handler) BeginEdit(c *gin.Context) {
	userID := mustUser(c)
	name := service.NormalizeName(c.PostForm("item"))

	items, err := h.pantry.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to load pantry", zap.Error(err))
		backToPantry(c)
		return
	}
	for _, item := range items {
		if item.Name == name {
			h.update(c, func(s *view.Session) error { return s.BeginEdit(item.Name, item.Count) })
			break
		}
	}
	backToPantry(c)
}

func (h *Handler) CancelEdit(c *gin.Context) {
	h.update(c, func(s *view.Session) error {
		s.CancelEdit()
		return nil
	})
	backToPantry(c)
}

// SaveEdit renames the card being edited. On a name collision the card stays
// in edit mode with the typed values and an alert is shown.
func (h *Handler) SaveEdit(c *gin.Context) {
	userID := mustUser(c)
	name := c.PostForm("name")
	count, err := strconv.Atoi(strings.TrimSpace(c.PostForm("count")))
	if err != nil {
		count = -1
	}

	var original string
	err = h.views.Update(userID, func(s *view.Session) error {
		var ok bool
		if original, ok = s.EditingName(); !ok {
			return view.ErrNotEditing
		}
		return s.UpdateDraft(name, count)
	})
	if err != nil {
		backToPantry(c)
		return
	}

	err = h.pantry.Rename(c.Request.Context(), userID, original, name, count)
	_ = h.views.Update(userID, func(s *view.Session) error {
		switch {
		case err == nil:
			s.FinishEdit()
		case errors.Is(err, service.ErrDuplicateItem):
			s.RejectEdit(view.AlertDuplicateName)
		case errors.Is(err, service.ErrEmptyName):
			s.RejectEdit("Ingredient name cannot be empty.")
		case errors.Is(err, service.ErrInvalidQuantity):
			s.RejectEdit("Quantity must be zero or more.")
		default:
			h.log.Error("Failed to save pantry item", zap.Error(err))
			s.RejectEdit("Failed to save the ingredient. Please try again.")
		}
		return nil
	})
	backToPantry(c)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := mustUser(c)
	name := service.NormalizeName(c.PostForm("item"))
	if err := h.pantry.Remove(c.Request.Context(), userID, name); err != nil {
		h.log.Error("Failed to remove pantry item", zap.Error(err))
		h.alert(c, "Failed to delete the ingredient. Please try again.")
	}
	h.update(c, func(s *view.Session) error {
		if editing, ok := s.EditingName(); ok && editing == name {
			s.CancelEdit()
		}
		return nil
	})
	backToPantry(c)
}

func (h *Handler) OpenRecipe(c *gin.Context) {
	h.update(c, (*view.Session).OpenRecipeInput)
	backToPantry(c)
}

func (h *Handler) CancelRecipe(c *gin.Context) {
	h.update(c, (*view.Session).CloseRecipeInput)
	backToPantry(c)
}

// Generate asks for a recipe built from the whole pantry. The session stays
// in the generating state for the duration of the call, so a second submit
// is rejected instead of starting another generation.
func (h *Handler) Generate(c *gin.Context) {
	userID := mustUser(c)
	var req types.PantryRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug("Rejected recipe form", zap.Error(err))
		h.alert(c, "Could not read the recipe request. Please try again.")
		backToPantry(c)
		return
	}

	err := h.views.Update(userID, func(s *view.Session) error {
		err := s.BeginGeneration(req.Guidance)
		if errors.Is(err, view.ErrGenerationInProgress) {
			s.SetAlert("A recipe is already being generated.")
		}
		return err
	})
	if err != nil {
		backToPantry(c)
		return
	}

	recipe, err := h.generate(c, userID, req.Guidance)
	_ = h.views.Update(userID, func(s *view.Session) error {
		if err != nil {
			return s.FailGeneration()
		}
		return s.CompleteGeneration(recipe)
	})
	backToPantry(c)
}

func (h *Handler) generate(c *gin.Context, userID uuid.UUID, guidance string) (string, error) {
	ctx := c.Request.Context()
	items, err := h.pantry.List(ctx, userID)
	if err != nil {
		h.log.Error("Failed to load pantry", zap.Error(err))
		return "", err
	}
	result, err := h.recipes.GenerateFromPantry(ctx, items, guidance)
	if err != nil {
		h.log.Warn("Recipe generation failed", zap.Error(err))
		return "", err
	}
	return result.Text, nil
}

func (h *Handler) CloseRecipe(c *gin.Context) {
	h.update(c, (*view.Session).CloseRecipe)
	backToPantry(c)
}

// update applies a view transition; out-of-order form posts are ignored
func (h *Handler) update(c *gin.Context, fn func(*view.Session) error) {
	if err := h.views.Update(mustUser(c), fn); err != nil {
		h.log.Debug("Ignored view transition", zap.String("path", c.FullPath()), zap.Error(err))
	}
}

func (h *Handler) alert(c *gin.Context, msg string) {
	h.update(c, func(s *view.Session) error {
		s.SetAlert(msg)
		return nil
	})
}

func mustUser(c *gin.Context) uuid.UUID {
	id, _ := middleware.UserID(c)
	return id
}
