package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/openlms/lms-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestStore creates a MySQL store over a mock database
func setupTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := New(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return s, mock, cleanup
}

func TestStore_Get(t *testing.T) {
	tests := []struct {
		name          string
		key           *store.Key
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		errorContains string
		check         func(*testing.T, *store.Entity)
	}{
		{
			name: "success",
			key:  store.NameKey("LmsCourse", "Course01", nil),
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"properties"}).
					AddRow(`{"code":"Course01","name":"Course NUMBER one","description":"A description of course one"}`)
				mock.ExpectQuery(`SELECT properties FROM entities WHERE key_path = \?`).
					WithArgs("LmsCourse,Course01").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, entity *store.Entity) {
				assert.Equal(t, "Course NUMBER one", entity.Properties["name"])
				assert.Equal(t, "Course01", entity.Key.Name)
			},
		},
		{
			name: "child key path",
			key:  store.IDKey("LmsLesson", 5, store.NameKey("LmsCourse", "Course01", nil)),
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"properties"}).
					AddRow(`{"title":"Lesson 1","content":"Content 1"}`)
				mock.ExpectQuery(`SELECT properties FROM entities WHERE key_path = \?`).
					WithArgs("LmsCourse,Course01/LmsLesson,#5").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, entity *store.Entity) {
				assert.Equal(t, "Lesson 1", entity.Properties["title"])
			},
		},
		{
			name: "no such entity",
			key:  store.NameKey("LmsUser", "nobody", nil),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT properties FROM entities WHERE key_path = \?`).
					WithArgs("LmsUser,nobody").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: store.ErrNoSuchEntity,
		},
		{
			name: "database error",
			key:  store.NameKey("LmsUser", "alice", nil),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT properties FROM entities WHERE key_path = \?`).
					WithArgs("LmsUser,alice").
					WillReturnError(errors.New("database error"))
			},
			errorContains: "failed to get entity",
		},
		{
			name: "malformed properties",
			key:  store.NameKey("LmsUser", "alice", nil),
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"properties"}).AddRow(`{not json`)
				mock.ExpectQuery(`SELECT properties FROM entities WHERE key_path = \?`).
					WithArgs("LmsUser,alice").
					WillReturnRows(rows)
			},
			errorContains: "failed to decode properties",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, cleanup := setupTestStore(t)
			defer cleanup()
			tt.setupMock(mock)

			entity, err := s.Get(context.Background(), tt.key)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				tt.check(t, entity)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Get_IncompleteKey(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.Get(context.Background(), store.IncompleteKey("LmsLesson", nil))

	assert.Error(t, err)
}

func TestStore_Put(t *testing.T) {
	t.Run("complete key upserts", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO entities`).
			WithArgs("LmsUser,alice", "LmsUser", "", []byte(`{"username":"alice"}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		entity := store.NewEntity(store.NameKey("LmsUser", "alice", nil))
		entity.Properties["username"] = "alice"

		key, err := s.Put(context.Background(), entity)

		require.NoError(t, err)
		assert.True(t, key.Equal(entity.Key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("incomplete key draws from sequence", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO entity_ids`).
			WillReturnResult(sqlmock.NewResult(17, 1))
		mock.ExpectExec(`INSERT INTO entities`).
			WithArgs("LmsCourse,Course01/LmsLesson,#17", "LmsLesson", "LmsCourse,Course01", []byte(`{"title":"Lesson 1"}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		parent := store.NameKey("LmsCourse", "Course01", nil)
		entity := store.NewEntity(store.IncompleteKey("LmsLesson", parent))
		entity.Properties["title"] = "Lesson 1"

		key, err := s.Put(context.Background(), entity)

		require.NoError(t, err)
		assert.Equal(t, int64(17), key.ID)
		assert.True(t, key.Parent.Equal(parent))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sequence error", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO entity_ids`).
			WillReturnError(errors.New("database error"))

		_, err := s.Put(context.Background(), store.NewEntity(store.IncompleteKey("LmsLesson", nil)))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to allocate entity id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write error", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO entities`).
			WillReturnError(errors.New("database error"))

		_, err := s.Put(context.Background(), store.NewEntity(store.NameKey("LmsUser", "alice", nil)))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to put entity")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Query(t *testing.T) {
	t.Run("by kind with ordering", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"key_path", "properties"}).
			AddRow("LmsCourse,Course02", `{"name":"Course NUMBER two"}`).
			AddRow("LmsCourse,Course01", `{"name":"Course NUMBER one"}`)
		mock.ExpectQuery(`SELECT key_path, properties FROM entities WHERE kind = \? ORDER BY BINARY JSON_UNQUOTE\(JSON_EXTRACT\(properties, '\$\.name'\)\) DESC`).
			WithArgs("LmsCourse").
			WillReturnRows(rows)

		results, err := s.Query(context.Background(), store.Query{Kind: "LmsCourse", Order: "-name"})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Course02", results[0].Key.Name)
		assert.Equal(t, "Course NUMBER two", results[0].Properties["name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ancestor scoping", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"key_path", "properties"}).
			AddRow("LmsCourse,Course01/LmsLesson,#1", `{"title":"Lesson 1"}`)
		mock.ExpectQuery(`SELECT key_path, properties FROM entities WHERE kind = \? AND key_path LIKE \?`).
			WithArgs("LmsLesson", "LmsCourse,Course01/%").
			WillReturnRows(rows)

		results, err := s.Query(context.Background(), store.Query{
			Kind:     "LmsLesson",
			Ancestor: store.NameKey("LmsCourse", "Course01", nil),
		})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(1), results[0].Key.ID)
		assert.Equal(t, "Course01", results[0].Key.Parent.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ancestor path wildcards are escaped", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"key_path", "properties"})
		mock.ExpectQuery(`SELECT key_path, properties FROM entities WHERE kind = \? AND key_path LIKE \?`).
			WithArgs("LmsLesson", `LmsCourse,100\%\_off/%`).
			WillReturnRows(rows)

		// A course code containing LIKE metacharacters must match only
		// its own children.
		results, err := s.Query(context.Background(), store.Query{
			Kind:     "LmsLesson",
			Ancestor: store.NameKey("LmsCourse", "100%_off", nil),
		})

		require.NoError(t, err)
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("equality filters", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"key_path", "properties"}).
			AddRow("LmsUser,alice", `{"username":"alice","email":"","passwordhash":"hash-a","about":"","completions":[]}`)
		mock.ExpectQuery(`SELECT key_path, properties FROM entities WHERE kind = \? AND JSON_UNQUOTE\(JSON_EXTRACT\(properties, '\$\.username'\)\) = \? AND JSON_UNQUOTE\(JSON_EXTRACT\(properties, '\$\.passwordhash'\)\) = \?`).
			WithArgs("LmsUser", "alice", "hash-a").
			WillReturnRows(rows)

		results, err := s.Query(context.Background(), store.Query{
			Kind: "LmsUser",
			Filters: []store.Filter{
				{Property: "username", Value: "alice"},
				{Property: "passwordhash", Value: "hash-a"},
			},
		})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "alice", results[0].Properties["username"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unsafe property name", func(t *testing.T) {
		s, _, cleanup := setupTestStore(t)
		defer cleanup()

		_, err := s.Query(context.Background(), store.Query{
			Kind:    "LmsUser",
			Filters: []store.Filter{{Property: "name')) = '' OR 1=1 --", Value: "x"}},
		})

		assert.Error(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		s, mock, cleanup := setupTestStore(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT key_path, properties FROM entities WHERE kind = \?`).
			WithArgs("LmsCourse").
			WillReturnError(errors.New("database error"))

		_, err := s.Query(context.Background(), store.Query{Kind: "LmsCourse"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query entities")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
