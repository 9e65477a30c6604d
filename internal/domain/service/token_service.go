package service

import (
	"time"

	"gatekeeper/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type markers embedded in the "type" claim so an access token can never
// be replayed against the refresh endpoint and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims carried by the JWT tokens.
type Claims struct {
	UserID         uuid.UUID
	Email          string // Only set on access tokens.
	Role           string // Only set on access tokens.
	RefreshTokenID string // Only set on refresh tokens; mirrored in the session store.
	Type           string
	jwt.RegisteredClaims
}

// TokenPair bundles the two bearer strings returned by every issuance path.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokenPair creates a new access/refresh token pair for a user.
	// The returned refreshTokenID is the random identifier embedded in the
	// refresh token; the caller is responsible for persisting it so the
	// refresh token can later be validated against server state.
	GenerateTokenPair(user *entity.User) (pair *TokenPair, refreshTokenID string, err error)

	// ValidateToken checks the validity of a token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// AccessTokenTTL returns the configured lifetime of access tokens.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured lifetime of refresh tokens.
	RefreshTokenTTL() time.Duration
}
