package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/openlms/lms-service/internal/auth"
	"github.com/openlms/lms-service/internal/models"
	"go.uber.org/zap"
)

// ProfileHandler handles HTTP requests for the authenticated user's profile
type ProfileHandler struct {
	BaseHandler
	service AccountService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc AccountService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/about", h.GetAbout)
		r.Put("/about", h.UpdateAbout)
		r.Get("/completions", h.GetCompletions)
		r.Post("/completions", h.CompleteLesson)
	})
}

// GetAbout handles GET /profile/about
// @Summary Get about text
// @Description Get the authenticated user's about text
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.AboutResponse "About text"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile/about [get]
func (h *ProfileHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.GetUsername(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "username not found in context")
		return
	}

	about, err := h.service.GetAbout(r.Context(), username)
	if err != nil {
		h.Logger.Error("failed to get about", zap.Error(err), zap.String("username", username))
		h.RespondError(w, http.StatusInternalServerError, "failed to get about")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.AboutResponse{About: about})
}

// UpdateAbout handles PUT /profile/about
// @Summary Update about text
// @Description Replace the authenticated user's about text
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateAboutRequest true "New about text"
// @Success 200 {object} models.AboutResponse "Updated about text"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile/about [put]
func (h *ProfileHandler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.GetUsername(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "username not found in context")
		return
	}

	var req models.UpdateAboutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateAbout(r.Context(), username, req.About); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.Logger.Error("failed to update about", zap.Error(err), zap.String("username", username))
		h.RespondError(w, http.StatusInternalServerError, "failed to update about")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.AboutResponse{About: req.About})
}

// GetCompletions handles GET /profile/completions
// @Summary Get completions
// @Description Get the authenticated user's completed lessons grouped by course
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Completions "Completions by course code"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile/completions [get]
func (h *ProfileHandler) GetCompletions(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.GetUsername(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "username not found in context")
		return
	}

	completions, err := h.service.GetCompletions(r.Context(), username)
	if err != nil {
		h.Logger.Error("failed to get completions", zap.Error(err), zap.String("username", username))
		h.RespondError(w, http.StatusInternalServerError, "failed to get completions")
		return
	}

	h.RespondJSON(w, http.StatusOK, completions)
}

// CompleteLesson handles POST /profile/completions
// @Summary Mark lesson complete
// @Description Record that the authenticated user completed a lesson; repeated calls are idempotent
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CompleteLessonRequest true "Course code and lesson ID"
// @Success 204 "No content"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile/completions [post]
func (h *ProfileHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.GetUsername(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "username not found in context")
		return
	}

	var req models.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CourseCode == "" || req.LessonID == 0 {
		h.RespondError(w, http.StatusBadRequest, "courseCode and lessonId are required")
		return
	}

	if err := h.service.CompleteLesson(r.Context(), username, req.CourseCode, req.LessonID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.Logger.Error("failed to complete lesson", zap.Error(err),
			zap.String("username", username), zap.String("courseCode", req.CourseCode), zap.Int64("lessonID", req.LessonID))
		h.RespondError(w, http.StatusInternalServerError, "failed to complete lesson")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
