package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlms/lms-service/internal/models"
	"github.com/openlms/lms-service/internal/store"
	"go.uber.org/zap"
)

type courseRepository struct {
	store  store.Client
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(client store.Client, logger *zap.Logger) *courseRepository {
	return &courseRepository{
		store:  client,
		logger: logger,
	}
}

// GetByCode retrieves a course by its code together with its lessons.
// Lessons are attached title-only (no content) in the order the store
// returns them, which is unordered as no ordering is requested.
func (r *courseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	courseKey := store.NameKey(CourseKind, code, nil)

	entity, err := r.store.Get(ctx, courseKey)
	if errors.Is(err, store.ErrNoSuchEntity) {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		r.logger.Error("failed to get course", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	record, err := courseRecordFromEntity(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to translate course: %w", err)
	}
	course := &models.Course{
		Code:        record.Code,
		Name:        record.Name,
		Description: record.Description,
	}

	lessonEntities, err := r.store.Query(ctx, store.Query{
		Kind:     LessonKind,
		Ancestor: courseKey,
	})
	if err != nil {
		r.logger.Error("failed to query lessons", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}

	for _, lessonEntity := range lessonEntities {
		lesson, err := lessonRecordFromEntity(lessonEntity, false)
		if err != nil {
			return nil, fmt.Errorf("failed to translate lesson: %w", err)
		}
		course.AddLesson(models.Lesson{ID: lesson.ID, Title: lesson.Title})
	}

	return course, nil
}

// GetAll retrieves all courses ordered by name descending
// (case-sensitive). Lessons are not attached.
func (r *courseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	entities, err := r.store.Query(ctx, store.Query{
		Kind:  CourseKind,
		Order: "-name",
	})
	if err != nil {
		r.logger.Error("failed to query courses", zap.Error(err))
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}

	courses := make([]models.Course, 0, len(entities))
	for _, entity := range entities {
		record, err := courseRecordFromEntity(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to translate course: %w", err)
		}
		courses = append(courses, models.Course{
			Code:        record.Code,
			Name:        record.Name,
			Description: record.Description,
		})
	}

	return courses, nil
}

// GetLesson retrieves a single lesson under the given course code,
// including its full content.
func (r *courseRepository) GetLesson(ctx context.Context, code string, lessonID int64) (*models.Lesson, error) {
	courseKey := store.NameKey(CourseKind, code, nil)
	lessonKey := store.IDKey(LessonKind, lessonID, courseKey)

	entity, err := r.store.Get(ctx, lessonKey)
	if errors.Is(err, store.ErrNoSuchEntity) {
		return nil, fmt.Errorf("lesson not found")
	}
	if err != nil {
		r.logger.Error("failed to get lesson", zap.Error(err),
			zap.String("code", code), zap.Int64("lessonID", lessonID))
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	record, err := lessonRecordFromEntity(entity, true)
	if err != nil {
		return nil, fmt.Errorf("failed to translate lesson: %w", err)
	}
	return &models.Lesson{ID: record.ID, Title: record.Title, Content: record.Content}, nil
}
