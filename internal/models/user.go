package models

// User represents a user in the system. The password hash is a storage-only
// field compared during authentication and deliberately has no place here.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	About    string `json:"about,omitempty"`
}

// Completions maps course codes to the lessons a user has completed within
// that course (lesson ID to lesson title).
type Completions map[string]map[int64]string

// RegisterRequest represents a request to create a user account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents the tokens returned on successful login
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateAboutRequest represents a request to update a user's about text
type UpdateAboutRequest struct {
	About string `json:"about"`
}

// AboutResponse represents a user's about text
type AboutResponse struct {
	About string `json:"about"`
}

// CompleteLessonRequest represents a request to mark a lesson complete
type CompleteLessonRequest struct {
	CourseCode string `json:"courseCode"`
	LessonID   int64  `json:"lessonId"`
}
