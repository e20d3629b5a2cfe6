// Package auth issues and validates the bearer tokens that guard the clinic
// API. Tokens name the operator they were issued to and are signed with a
// pre-shared secret; there are no stored credentials.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing operator access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the named operator.
	GenerateToken(ctx context.Context, operator string) (string, error)

	// ValidateToken checks the signature, lifetime and type of tokenString
	// and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	Operator  string    `json:"sub,omitempty"`
	TokenType string    `json:"type,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
