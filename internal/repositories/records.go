package repositories

import (
	"fmt"

	"github.com/openlms/lms-service/internal/store"
)

// Store entity kinds. Exported because the seeding utility writes lesson
// records directly; there is no repository creation path for them.
const (
	UserKind   = "LmsUser"
	CourseKind = "LmsCourse"
	LessonKind = "LmsLesson"
)

// The record types below are the typed boundary between the domain and the
// store's open property maps. Each kind has exactly one record struct and a
// pair of mapping functions, so no code outside this file touches untyped
// fields.

type courseRecord struct {
	Code        string
	Name        string
	Description string
}

func courseRecordFromEntity(entity *store.Entity) (*courseRecord, error) {
	name, err := stringProperty(entity, "name")
	if err != nil {
		return nil, err
	}
	description, err := stringProperty(entity, "description")
	if err != nil {
		return nil, err
	}
	return &courseRecord{
		Code:        entity.Key.Name,
		Name:        name,
		Description: description,
	}, nil
}

func (r *courseRecord) toEntity() *store.Entity {
	entity := store.NewEntity(store.NameKey(CourseKind, r.Code, nil))
	entity.Properties["code"] = r.Code
	entity.Properties["name"] = r.Name
	entity.Properties["description"] = r.Description
	return entity
}

type lessonRecord struct {
	ID      int64
	Title   string
	Content string
}

// lessonRecordFromEntity translates a lesson entity. Content is skipped when
// includeContent is false so listing views do not carry the full lesson body.
func lessonRecordFromEntity(entity *store.Entity, includeContent bool) (*lessonRecord, error) {
	title, err := stringProperty(entity, "title")
	if err != nil {
		return nil, err
	}
	record := &lessonRecord{ID: entity.Key.ID, Title: title}
	if includeContent {
		record.Content, err = stringProperty(entity, "content")
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (r *lessonRecord) toEntity(courseKey *store.Key) *store.Entity {
	key := store.IncompleteKey(LessonKind, courseKey)
	if r.ID != 0 {
		key = store.IDKey(LessonKind, r.ID, courseKey)
	}
	entity := store.NewEntity(key)
	entity.Properties["title"] = r.Title
	entity.Properties["content"] = r.Content
	return entity
}

type userRecord struct {
	Username     string
	Email        string
	PasswordHash string
	About        string
	Completions  []*store.Key
}

func userRecordFromEntity(entity *store.Entity) (*userRecord, error) {
	username, err := stringProperty(entity, "username")
	if err != nil {
		return nil, err
	}
	email, err := stringProperty(entity, "email")
	if err != nil {
		return nil, err
	}
	passwordHash, err := stringProperty(entity, "passwordhash")
	if err != nil {
		return nil, err
	}
	about, err := stringProperty(entity, "about")
	if err != nil {
		return nil, err
	}
	completions, err := keyListProperty(entity, "completions")
	if err != nil {
		return nil, err
	}
	return &userRecord{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		About:        about,
		Completions:  completions,
	}, nil
}

func (r *userRecord) toEntity() *store.Entity {
	completions := make([]any, 0, len(r.Completions))
	for _, key := range r.Completions {
		completions = append(completions, key.Encode())
	}

	entity := store.NewEntity(store.NameKey(UserKind, r.Username, nil))
	entity.Properties["username"] = r.Username
	entity.Properties["email"] = r.Email
	entity.Properties["passwordhash"] = r.PasswordHash
	entity.Properties["about"] = r.About
	entity.Properties["completions"] = completions
	return entity
}

func stringProperty(entity *store.Entity, name string) (string, error) {
	value, ok := entity.Properties[name]
	if !ok {
		return "", fmt.Errorf("entity %s is missing property %q", entity.Key.Encode(), name)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("property %q of entity %s is not a string", name, entity.Key.Encode())
	}
	return s, nil
}

// keyListProperty reads a list property of encoded key references.
func keyListProperty(entity *store.Entity, name string) ([]*store.Key, error) {
	value, ok := entity.Properties[name]
	if !ok {
		return nil, fmt.Errorf("entity %s is missing property %q", entity.Key.Encode(), name)
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("property %q of entity %s is not a list", name, entity.Key.Encode())
	}

	keys := make([]*store.Key, 0, len(list))
	for _, item := range list {
		encoded, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("property %q of entity %s holds a non-key element", name, entity.Key.Encode())
		}
		key, err := store.DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("property %q of entity %s holds a malformed key: %w", name, entity.Key.Encode(), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
