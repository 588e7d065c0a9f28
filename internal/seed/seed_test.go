package seed

import (
	"context"
	"testing"

	"github.com/openlms/lms-service/internal/repositories"
	"github.com/openlms/lms-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := Run(ctx, s, zap.NewNop())
	require.NoError(t, err)

	courseRepo := repositories.NewCourseRepository(s, zap.NewNop())
	userRepo := repositories.NewUserRepository(s, zap.NewNop())

	courses, err := courseRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	// Ordered by name descending.
	assert.Equal(t, "Second Course", courses[0].Name)
	assert.Equal(t, "First Course", courses[1].Name)

	for _, code := range []string{"Course01", "Course02"} {
		course, err := courseRepo.GetByCode(ctx, code)
		require.NoError(t, err)
		require.Len(t, course.Lessons, 2)

		for _, lesson := range course.Lessons {
			full, err := courseRepo.GetLesson(ctx, code, lesson.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, full.Content)
		}
	}

	// The test user exists with an empty profile.
	about, err := userRepo.GetAbout(ctx, "testuser")
	require.NoError(t, err)
	assert.Empty(t, about)

	completions, err := userRepo.GetCompletions(ctx, "testuser")
	require.NoError(t, err)
	assert.Empty(t, completions)
}

func TestRun_Rerun(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, Run(ctx, s, zap.NewNop()))
	require.NoError(t, Run(ctx, s, zap.NewNop()))

	courseRepo := repositories.NewCourseRepository(s, zap.NewNop())

	courses, err := courseRepo.GetAll(ctx)
	require.NoError(t, err)
	// Courses are keyed by code and replaced; lessons get fresh IDs and
	// accumulate.
	assert.Len(t, courses, 2)

	course, err := courseRepo.GetByCode(ctx, "Course01")
	require.NoError(t, err)
	assert.Len(t, course.Lessons, 4)
}
