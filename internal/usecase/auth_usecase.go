// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gatekeeper/internal/domain/entity"
)

// --- Input DTOs ---

// SignUpInput defines the data required to register a new user.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignInInput defines the data required for a user to sign in.
type SignInInput struct {
	Email    string
	Password string
}

// RefreshTokensInput carries the refresh token presented for rotation.
type RefreshTokensInput struct {
	RefreshToken string
}

// GoogleSignInInput carries the Google ID token obtained by the mobile client.
type GoogleSignInInput struct {
	IDToken string
}

// LogoutInput carries the refresh token of the session being terminated.
type LogoutInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// SignUpOutput returns the newly created user. No tokens are issued on
// sign-up; the client signs in separately.
type SignUpOutput struct {
	User *entity.User
}

// TokenPairOutput returns a freshly issued access/refresh token pair.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	SignUp(ctx context.Context, input SignUpInput) (*SignUpOutput, error)
	SignIn(ctx context.Context, input SignInInput) (*TokenPairOutput, error)
	RefreshTokens(ctx context.Context, input RefreshTokensInput) (*TokenPairOutput, error)
	GoogleSignIn(ctx context.Context, input GoogleSignInInput) (*TokenPairOutput, error)
	Logout(ctx context.Context, input LogoutInput) error
}
