package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openlms/lms-service/internal/models"
	"go.uber.org/zap"
)

// AccountService is the interface that wraps methods for account operations
type AccountService interface {
	// Register creates a user account
	//
	// "ctx" is the context for the request.
	// "req" carries the username, email and plain password.
	//
	// Returns the created user and an error if any.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Login authenticates credentials and issues tokens
	//
	// "ctx" is the context for the request.
	// "req" carries the username and plain password.
	//
	// Returns the token pair and an error if any.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	// Refresh validates a refresh token and issues a new token pair
	//
	// "ctx" is the context for the request.
	// "refreshToken" identifies the user via its username claim.
	//
	// Returns the new token pair and an error if any.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	// GetAbout retrieves a user's about text
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	//
	// Returns the about text and an error if any.
	GetAbout(ctx context.Context, username string) (string, error)
	// UpdateAbout replaces a user's about text
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	// "about" is the new about text.
	//
	// Returns an error if any.
	UpdateAbout(ctx context.Context, username, about string) error
	// GetCompletions retrieves the user's completion mapping
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	//
	// Returns the completions and an error if any.
	GetCompletions(ctx context.Context, username string) (models.Completions, error)
	// CompleteLesson marks a lesson complete for the user
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	// "courseCode" is the code of the course the lesson belongs to.
	// "lessonID" is the lesson identifier within the course.
	//
	// Returns an error if any.
	CompleteLesson(ctx context.Context, username, courseCode string, lessonID int64) error
}

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	BaseHandler
	service AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
	})
}

// Register handles POST /auth/register
// @Summary Register a user
// @Description Create a user account; registering an existing username resets its profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.User "Created user"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		h.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to register user", zap.Error(err), zap.String("username", req.Username))
		h.RespondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Authenticate credentials and issue access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse "Token pair"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	h.RespondJSON(w, http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new access and refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse "New token pair"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 401 {object} models.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		h.RespondError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	h.RespondJSON(w, http.StatusOK, tokens)
}
