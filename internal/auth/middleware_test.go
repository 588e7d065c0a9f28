package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	tg := NewTokenGenerator("test-secret", time.Hour, 7*24*time.Hour)
	accessToken, _, err := tg.GenerateTokens("alice")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := GetUsername(r.Context())
		require.True(t, ok)
		assert.Equal(t, "alice", username)
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(tg)(next)

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
	}{
		{
			name: "bearer header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+accessToken)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "access_token cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no credentials",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.token")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed authorization header falls through",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", accessToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile/about", nil)
			tt.setupRequest(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestGetUsername_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetUsername(req.Context())

	assert.False(t, ok)
}
