package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/openlms/lms-service/internal/models"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for course catalog operations
type CatalogService interface {
	// GetCourses retrieves the full course list
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of courses and an error if any.
	GetCourses(ctx context.Context) ([]models.Course, error)
	// GetCourse retrieves course details with its lesson list
	//
	// "ctx" is the context for the request.
	// "code" is the course code.
	//
	// Returns the course and an error if any.
	GetCourse(ctx context.Context, code string) (*models.Course, error)
	// GetLesson retrieves a full lesson including content
	//
	// "ctx" is the context for the request.
	// "code" is the course code.
	// "lessonID" is the lesson identifier within the course.
	//
	// Returns the lesson and an error if any.
	GetLesson(ctx context.Context, code string, lessonID int64) (*models.Lesson, error)
}

// CourseHandler handles HTTP requests for the course catalog
type CourseHandler struct {
	BaseHandler
	service CatalogService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CatalogService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.GetCourses)
		r.Get("/{code}", h.GetCourse)
		r.Get("/{code}/lessons/{lessonID}", h.GetLesson)
	})
}

// GetCourses handles GET /courses
// @Summary Get list of courses
// @Description Get all courses ordered by name descending
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course "List of courses"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.GetCourses(r.Context())
	if err != nil {
		h.Logger.Error("failed to get courses", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{code}
// @Summary Get course details
// @Description Get a course by its code, including its lessons (titles only)
// @Tags courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} models.Course "Course details"
// @Failure 404 {object} models.ErrorResponse "Course not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /courses/{code} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	course, err := h.service.GetCourse(r.Context(), code)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "course not found")
			return
		}
		h.Logger.Error("failed to get course", zap.Error(err), zap.String("code", code))
		h.RespondError(w, http.StatusInternalServerError, "failed to get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// GetLesson handles GET /courses/{code}/lessons/{lessonID}
// @Summary Get lesson details
// @Description Get a lesson with full content by course code and lesson ID
// @Tags courses
// @Produce json
// @Param code path string true "Course code"
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.Lesson "Lesson details"
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Failure 404 {object} models.ErrorResponse "Lesson not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /courses/{code}/lessons/{lessonID} [get]
func (h *CourseHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	lessonID, err := strconv.ParseInt(chi.URLParam(r, "lessonID"), 10, 64)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid lesson ID")
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), code, lessonID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "lesson not found")
			return
		}
		h.Logger.Error("failed to get lesson", zap.Error(err),
			zap.String("code", code), zap.Int64("lessonID", lessonID))
		h.RespondError(w, http.StatusInternalServerError, "failed to get lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}
