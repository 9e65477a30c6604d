// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput defines the mutable fields of a user's own profile.
type UpdateProfileInput struct {
	Name string
}

// UserUsecase defines the interface for user management operations.
type UserUsecase interface {
	// GetProfile returns the user identified by the access token.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// UpdateProfile modifies the caller's own profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error)

	// DeleteAccount removes the caller's account and revokes their sessions.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	// ListUsers returns all users. Restricted to admins at the delivery layer.
	ListUsers(ctx context.Context) ([]*entity.User, error)

	// GetUser returns a single user by ID. Restricted to admins at the delivery layer.
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// DeleteUser removes a user by ID and revokes their sessions.
	// Restricted to admins at the delivery layer.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
