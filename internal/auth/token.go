// Package auth provides JWT session tokens, the middleware that validates
// them, and the deterministic password hashing used by the account service.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry, refreshExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// GenerateTokens generates both access and refresh tokens for a user.
// Both carry the username in their payload; refresh tokens are not stored
// server-side, the claim is what identifies the user on refresh.
func (tg *TokenGenerator) GenerateTokens(username string) (string, string, error) {
	accessToken, err := tg.generateToken(jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(tg.accessTokenExpiry).Unix(),
		"iat":      time.Now().Unix(),
		"type":     "access",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := tg.generateToken(jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(tg.refreshTokenExpiry).Unix(),
		"iat":      time.Now().Unix(),
		"type":     "refresh",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (tg *TokenGenerator) generateToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the username.
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (string, error) {
	return tg.validateToken(tokenString, "access")
}

// ValidateRefreshToken validates a refresh token and returns the username.
func (tg *TokenGenerator) ValidateRefreshToken(tokenString string) (string, error) {
	return tg.validateToken(tokenString, "refresh")
}

func (tg *TokenGenerator) validateToken(tokenString, wantType string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		if wantType == "access" {
			return "", fmt.Errorf("token is not an access token")
		}
		return "", fmt.Errorf("token is not a refresh token")
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in token")
	}

	return username, nil
}
