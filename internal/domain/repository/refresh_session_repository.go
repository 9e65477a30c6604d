// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSessionStoreUnavailable is returned when the session store cannot be
// reached. It maps to an infrastructure failure, never to an auth failure.
var ErrSessionStoreUnavailable = errors.New("refresh session store unavailable")

// RefreshSessionRepository persists, per user, the single currently-valid
// refresh-token identifier. Storing a new identifier supersedes the previous
// one, which enforces the one-active-refresh-token-per-user invariant.
type RefreshSessionRepository interface {
	// Put unconditionally overwrites the stored identifier for the user.
	// This is the rotation point: the prior identifier becomes invalid the
	// moment a new one is stored, even if its own token has not expired.
	Put(ctx context.Context, userID uuid.UUID, tokenID string) error

	// Validate reports whether the stored identifier for the user equals
	// the given identifier exactly.
	Validate(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)

	// Invalidate removes the stored entry, making all refresh tokens for
	// the user unusable regardless of cryptographic validity.
	Invalidate(ctx context.Context, userID uuid.UUID) error

	// Consume atomically validates and removes the stored identifier in a
	// single linearizable step. It reports true iff the identifier matched
	// and was deleted. At most one of several concurrent callers presenting
	// the same identifier can observe true.
	Consume(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
}
