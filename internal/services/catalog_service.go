package services

import (
	"context"
	"fmt"

	"github.com/openlms/lms-service/internal/models"
)

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// GetByCode retrieves a course by its code together with its lessons
	//
	// "ctx" is the context for the request.
	// "code" is the course code.
	//
	// Returns the course and an error if any.
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	// GetAll retrieves all courses ordered by name descending
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of courses and an error if any.
	GetAll(ctx context.Context) ([]models.Course, error)
	// GetLesson retrieves a lesson with full content under a course
	//
	// "ctx" is the context for the request.
	// "code" is the course code.
	// "lessonID" is the lesson identifier within the course.
	//
	// Returns the lesson and an error if any.
	GetLesson(ctx context.Context, code string, lessonID int64) (*models.Lesson, error)
}

type catalogService struct {
	courseRepo CourseRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(courseRepo CourseRepository) *catalogService {
	return &catalogService{
		courseRepo: courseRepo,
	}
}

// GetCourses retrieves the full course list
func (s *catalogService) GetCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	return courses, nil
}

// GetCourse retrieves course details with its lesson list
func (s *catalogService) GetCourse(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// GetLesson retrieves a full lesson including content
func (s *catalogService) GetLesson(ctx context.Context, code string, lessonID int64) (*models.Lesson, error) {
	lesson, err := s.courseRepo.GetLesson(ctx, code, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}
