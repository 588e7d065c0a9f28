// Package seed populates the entity store with basic demonstration data:
// a test user and two courses with two lessons each. Lessons have no other
// creation path in this codebase.
package seed

import (
	"context"
	"fmt"

	"github.com/openlms/lms-service/internal/repositories"
	"github.com/openlms/lms-service/internal/store"
	"go.uber.org/zap"
)

type course struct {
	code        string
	name        string
	description string
	lessons     []lesson
}

type lesson struct {
	title   string
	content string
}

var courses = []course{
	{
		code: "Course01",
		name: "First Course",
		description: "This is a description for a test course. In the future, " +
			"real courses will have lots of other stuff here to see that will " +
			"tell you more about their content.",
		lessons: []lesson{
			{
				title:   "Lesson 1: The First One",
				content: "Imagine there were lots of video content and cool things.",
			},
			{
				title:   "Lesson 2: Another One",
				content: "1<br>2<br>3<br>4<br>5<br>6<br>7<br>8<br>9<br>10<br>11",
			},
		},
	},
	{
		code:        "Course02",
		name:        "Second Course",
		description: "This is also a course description, but maybe less wordy than the previous one.",
		lessons: []lesson{
			{
				title:   "Lesson 1: The First One, a Second Time",
				content: "<p>Things</p><p>Other Things</p><p>Still More Things</p>",
			},
			{
				title:   "Lesson 2: Yes, Another One",
				content: "<ul><li>a</li><li>b</li><li>c</li><li>d</li></ul>",
			},
		},
	},
}

// Run writes the seed data into the store. Existing records with the same
// keys are replaced; lesson records always get fresh identifiers.
func Run(ctx context.Context, client store.Client, logger *zap.Logger) error {
	user := store.NewEntity(store.NameKey(repositories.UserKind, "testuser", nil))
	user.Properties["username"] = "testuser"
	user.Properties["email"] = ""
	user.Properties["passwordhash"] = ""
	user.Properties["about"] = ""
	user.Properties["completions"] = []any{}
	if _, err := client.Put(ctx, user); err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	logger.Info("seeded user", zap.String("username", "testuser"))

	for _, c := range courses {
		courseKey := store.NameKey(repositories.CourseKind, c.code, nil)

		entity := store.NewEntity(courseKey)
		entity.Properties["code"] = c.code
		entity.Properties["name"] = c.name
		entity.Properties["description"] = c.description
		if _, err := client.Put(ctx, entity); err != nil {
			return fmt.Errorf("failed to seed course %s: %w", c.code, err)
		}

		for _, l := range c.lessons {
			lessonEntity := store.NewEntity(store.IncompleteKey(repositories.LessonKind, courseKey))
			lessonEntity.Properties["title"] = l.title
			lessonEntity.Properties["content"] = l.content

			key, err := client.Put(ctx, lessonEntity)
			if err != nil {
				return fmt.Errorf("failed to seed lesson %q: %w", l.title, err)
			}
			logger.Info("seeded lesson",
				zap.String("course", c.code), zap.Int64("lessonID", key.ID), zap.String("title", l.title))
		}

		logger.Info("seeded course", zap.String("code", c.code), zap.Int("lessons", len(c.lessons)))
	}

	return nil
}
