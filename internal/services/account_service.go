package services

import (
	"context"
	"fmt"

	"github.com/openlms/lms-service/internal/auth"
	"github.com/openlms/lms-service/internal/models"
	"go.uber.org/zap"
)

// UserRepository defines methods for user data access
type UserRepository interface {
	// GetByCredentials retrieves the user matching both username and
	// password hash exactly
	//
	// "ctx" is the context for the request.
	// "username" is the username to match.
	// "passwordHash" is the already-hashed password to match.
	//
	// Returns the user, or nil without an error when nothing matches.
	GetByCredentials(ctx context.Context, username, passwordHash string) (*models.User, error)
	// GetAbout returns the user's about text, empty when the user is absent
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	//
	// Returns the about text and an error if any.
	GetAbout(ctx context.Context, username string) (string, error)
	// GetCompletions builds the user's completion mapping
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	//
	// Returns the completions and an error if any.
	GetCompletions(ctx context.Context, username string) (models.Completions, error)
	// Save creates or fully replaces a user record
	//
	// "ctx" is the context for the request.
	// "user" is the user to save.
	// "passwordHash" is the already-hashed password to store.
	//
	// Returns an error if any.
	Save(ctx context.Context, user *models.User, passwordHash string) error
	// SaveAbout updates the about text of an existing user
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	// "about" is the new about text.
	//
	// Returns an error if any.
	SaveAbout(ctx context.Context, username, about string) error
	// SaveCompletion records a completed lesson for a user
	//
	// "ctx" is the context for the request.
	// "username" is the username.
	// "courseCode" is the code of the course the lesson belongs to.
	// "lessonID" is the lesson identifier within the course.
	//
	// Returns an error if any.
	SaveCompletion(ctx context.Context, username, courseCode string, lessonID int64) error
}

type accountService struct {
	userRepo       UserRepository
	hasher         *auth.PasswordHasher
	tokenGenerator *auth.TokenGenerator
	logger         *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo UserRepository,
	hasher *auth.PasswordHasher,
	tokenGenerator *auth.TokenGenerator,
	logger *zap.Logger,
) *accountService {
	return &accountService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Register creates a user record for the given credentials. Saving is a
// full replace: registering an existing username resets its about text and
// completions.
func (s *accountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
	}

	if err := s.userRepo.Save(ctx, user, s.hasher.Hash(req.Password)); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", user.Username))
	return user, nil
}

// Login authenticates the credentials and issues access and refresh tokens.
func (s *accountService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByCredentials(ctx, req.Username, s.hasher.Hash(req.Password))
	if err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates a refresh token and issues a fresh token pair for the
// user it names. Refresh tokens are not tracked server-side, so the old
// token stays usable until it expires.
func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	username, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired refresh token")
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// GetAbout retrieves a user's about text
func (s *accountService) GetAbout(ctx context.Context, username string) (string, error) {
	about, err := s.userRepo.GetAbout(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to get about: %w", err)
	}
	return about, nil
}

// UpdateAbout replaces a user's about text
func (s *accountService) UpdateAbout(ctx context.Context, username, about string) error {
	if err := s.userRepo.SaveAbout(ctx, username, about); err != nil {
		return fmt.Errorf("failed to update about: %w", err)
	}
	return nil
}

// GetCompletions retrieves the user's completion mapping
func (s *accountService) GetCompletions(ctx context.Context, username string) (models.Completions, error) {
	completions, err := s.userRepo.GetCompletions(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}
	return completions, nil
}

// CompleteLesson marks a lesson complete for the user
func (s *accountService) CompleteLesson(ctx context.Context, username, courseCode string, lessonID int64) error {
	if err := s.userRepo.SaveCompletion(ctx, username, courseCode, lessonID); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}
