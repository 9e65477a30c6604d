// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record of the system. A user is created either by
// email/password sign-up or implicitly on the first Google sign-in.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Name         string    // The user's display name.
	Email        string    // The user's primary email, used as the login identifier. Unique.
	PasswordHash string    // bcrypt hash of the password. Empty for accounts created via Google sign-in.
	Role         Role      // The user's role, defaults to RoleUser on creation.
	GoogleID     string    // Google's 'sub' claim for federated accounts. Empty otherwise, unique when set.
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// HasPassword reports whether password sign-in is available for this account.
// Accounts created through Google sign-in carry no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
