package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlms/lms-service/internal/models"
	"github.com/openlms/lms-service/internal/store"
	"go.uber.org/zap"
)

type userRepository struct {
	store  store.Client
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(client store.Client, logger *zap.Logger) *userRepository {
	return &userRepository{
		store:  client,
		logger: logger,
	}
}

// GetByCredentials retrieves the user whose username and password hash both
// match exactly. No hashing happens here; the caller supplies an
// already-hashed value. Returns (nil, nil) when no user matches.
func (r *userRepository) GetByCredentials(ctx context.Context, username, passwordHash string) (*models.User, error) {
	entities, err := r.store.Query(ctx, store.Query{
		Kind: UserKind,
		Filters: []store.Filter{
			{Property: "username", Value: username},
			{Property: "passwordhash", Value: passwordHash},
		},
	})
	if err != nil {
		r.logger.Error("failed to query user by credentials", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if len(entities) == 0 {
		return nil, nil
	}

	record, err := userRecordFromEntity(entities[0])
	if err != nil {
		return nil, fmt.Errorf("failed to translate user: %w", err)
	}
	// The password hash stays behind in the record; it is never exposed
	// on the domain object.
	return &models.User{
		Username: record.Username,
		Email:    record.Email,
		About:    record.About,
	}, nil
}

// GetAbout returns the user's about text, or the empty string when no such
// user exists. Absence is deliberately not an error here.
func (r *userRepository) GetAbout(ctx context.Context, username string) (string, error) {
	entity, err := r.store.Get(ctx, store.NameKey(UserKind, username, nil))
	if errors.Is(err, store.ErrNoSuchEntity) {
		return "", nil
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String("username", username))
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	record, err := userRecordFromEntity(entity)
	if err != nil {
		return "", fmt.Errorf("failed to translate user: %w", err)
	}
	return record.About, nil
}

// GetCompletions builds a course-code to (lesson ID to lesson title) mapping
// from the user's completion references. Each reference costs one lesson
// fetch plus one parent-course fetch; there is no batching.
func (r *userRepository) GetCompletions(ctx context.Context, username string) (models.Completions, error) {
	entity, err := r.store.Get(ctx, store.NameKey(UserKind, username, nil))
	if errors.Is(err, store.ErrNoSuchEntity) {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	record, err := userRecordFromEntity(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to translate user: %w", err)
	}

	completions := models.Completions{}
	for _, lessonKey := range record.Completions {
		lessonEntity, err := r.store.Get(ctx, lessonKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get completed lesson: %w", err)
		}
		lesson, err := lessonRecordFromEntity(lessonEntity, false)
		if err != nil {
			return nil, fmt.Errorf("failed to translate lesson: %w", err)
		}

		courseEntity, err := r.store.Get(ctx, lessonKey.Parent)
		if err != nil {
			return nil, fmt.Errorf("failed to get completed lesson's course: %w", err)
		}
		code := courseEntity.Key.Name

		if _, ok := completions[code]; !ok {
			completions[code] = map[int64]string{}
		}
		completions[code][lessonKey.ID] = lesson.Title
	}

	return completions, nil
}

// Save creates or fully replaces the user record keyed by the username. The
// about text and completion list are reset; calling this for an existing
// user discards both.
func (r *userRepository) Save(ctx context.Context, user *models.User, passwordHash string) error {
	record := &userRecord{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: passwordHash,
		About:        "",
		Completions:  nil,
	}

	if _, err := r.store.Put(ctx, record.toEntity()); err != nil {
		r.logger.Error("failed to save user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SaveAbout updates the about text of an existing user. The fetched record
// is written back in place, so every other field is preserved. There is no
// upsert: a missing user is an error.
func (r *userRepository) SaveAbout(ctx context.Context, username, about string) error {
	entity, err := r.store.Get(ctx, store.NameKey(UserKind, username, nil))
	if errors.Is(err, store.ErrNoSuchEntity) {
		return fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to get user: %w", err)
	}

	entity.Properties["about"] = about

	if _, err := r.store.Put(ctx, entity); err != nil {
		r.logger.Error("failed to save user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SaveCompletion records that the user completed the given lesson.
// Completions are a set in meaning, so the reference is appended only when
// it is not already present; repeating the call leaves one entry.
//
// This is an uncoordinated read-modify-write: two concurrent calls for the
// same user can race and one append may be lost. The store offers no
// compare-and-swap here and the write is best effort.
func (r *userRepository) SaveCompletion(ctx context.Context, username, courseCode string, lessonID int64) error {
	courseKey := store.NameKey(CourseKind, courseCode, nil)
	lessonKey := store.IDKey(LessonKind, lessonID, courseKey)

	entity, err := r.store.Get(ctx, store.NameKey(UserKind, username, nil))
	if errors.Is(err, store.ErrNoSuchEntity) {
		return fmt.Errorf("user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to get user: %w", err)
	}

	record, err := userRecordFromEntity(entity)
	if err != nil {
		return fmt.Errorf("failed to translate user: %w", err)
	}

	seen := false
	for _, existing := range record.Completions {
		if existing.Equal(lessonKey) {
			seen = true
			break
		}
	}
	if !seen {
		record.Completions = append(record.Completions, lessonKey)
	}

	if _, err := r.store.Put(ctx, record.toEntity()); err != nil {
		r.logger.Error("failed to save completion", zap.Error(err),
			zap.String("username", username), zap.String("courseCode", courseCode), zap.Int64("lessonID", lessonID))
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}
