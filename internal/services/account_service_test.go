package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlms/lms-service/internal/auth"
	"github.com/openlms/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	users       map[string]*models.User // username -> user
	hashes      map[string]string       // username -> password hash
	abouts      map[string]string
	completions models.Completions
	err         error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  map[string]*models.User{},
		hashes: map[string]string{},
		abouts: map[string]string{},
	}
}

func (m *mockUserRepository) GetByCredentials(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.hashes[username] != passwordHash {
		return nil, nil
	}
	return m.users[username], nil
}

func (m *mockUserRepository) GetAbout(ctx context.Context, username string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.abouts[username], nil
}

func (m *mockUserRepository) GetCompletions(ctx context.Context, username string) (models.Completions, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.completions, nil
}

func (m *mockUserRepository) Save(ctx context.Context, user *models.User, passwordHash string) error {
	if m.err != nil {
		return m.err
	}
	m.users[user.Username] = user
	m.hashes[user.Username] = passwordHash
	return nil
}

func (m *mockUserRepository) SaveAbout(ctx context.Context, username, about string) error {
	if m.err != nil {
		return m.err
	}
	m.abouts[username] = about
	return nil
}

func (m *mockUserRepository) SaveCompletion(ctx context.Context, username, courseCode string, lessonID int64) error {
	return m.err
}

// setupAccountService wires an account service over the given mock repository
func setupAccountService(repo UserRepository) *accountService {
	hasher := auth.NewPasswordHasher("test-salt")
	tokenGenerator := auth.NewTokenGenerator("test-secret", time.Hour, 7*24*time.Hour)
	return NewAccountService(repo, hasher, tokenGenerator, zap.NewNop())
}

func TestAccountService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		user, err := svc.Register(context.Background(), &models.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		// The stored hash is derived, never the raw password.
		assert.NotEmpty(t, mockRepo.hashes["alice"])
		assert.NotEqual(t, "secret", mockRepo.hashes["alice"])
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.err = errors.New("database error")
		svc := setupAccountService(mockRepo)

		_, err := svc.Register(context.Background(), &models.RegisterRequest{Username: "alice"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register user")
	})
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("registered credentials log in", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		_, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)

		tokens, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret"})

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		_, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid username or password")
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		_, err := svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "secret"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid username or password")
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.err = errors.New("database error")
		svc := setupAccountService(mockRepo)

		_, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check credentials")
	})
}

func TestAccountService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("issued refresh token yields a new pair", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		_, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		tokens, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEmpty(t, refreshed.RefreshToken)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		_, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		tokens, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret"})
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, tokens.AccessToken)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired refresh token")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		svc := setupAccountService(newMockUserRepository())

		_, err := svc.Refresh(ctx, "not.a.token")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired refresh token")
	})
}

func TestAccountService_About(t *testing.T) {
	ctx := context.Background()

	t.Run("update then get", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		require.NoError(t, svc.UpdateAbout(ctx, "alice", "I study Go"))

		about, err := svc.GetAbout(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "I study Go", about)
	})

	t.Run("get error", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.err = errors.New("database error")
		svc := setupAccountService(mockRepo)

		_, err := svc.GetAbout(ctx, "alice")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get about")
	})

	t.Run("update error", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.err = errors.New("user not found")
		svc := setupAccountService(mockRepo)

		err := svc.UpdateAbout(ctx, "nobody", "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "user not found")
	})
}

func TestAccountService_Completions(t *testing.T) {
	ctx := context.Background()

	t.Run("get completions", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.completions = models.Completions{
			"Course01": {1: "Lesson 1", 2: "Lesson 2"},
		}
		svc := setupAccountService(mockRepo)

		completions, err := svc.GetCompletions(ctx, "alice")

		require.NoError(t, err)
		assert.Len(t, completions["Course01"], 2)
	})

	t.Run("complete lesson", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		svc := setupAccountService(mockRepo)

		assert.NoError(t, svc.CompleteLesson(ctx, "alice", "Course01", 1))
	})

	t.Run("complete lesson error", func(t *testing.T) {
		mockRepo := newMockUserRepository()
		mockRepo.err = errors.New("user not found")
		svc := setupAccountService(mockRepo)

		err := svc.CompleteLesson(ctx, "nobody", "Course01", 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "user not found")
	})
}
