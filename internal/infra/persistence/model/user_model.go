package model

import (
	"time"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v4().
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	GoogleID     *string   `gorm:"type:varchar(255);unique"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the persistence model into the domain entity.
func (m *UserModel) ToEntity() *entity.User {
	user := &entity.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      entity.RoleFromString(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.PasswordHash != nil {
		user.PasswordHash = *m.PasswordHash
	}
	if m.GoogleID != nil {
		user.GoogleID = *m.GoogleID
	}

	return user
}

// FromEntity builds a persistence model from the domain entity. Empty
// password hash and Google ID map to NULL so the partial unique index on
// google_id is not tripped by empty strings.
func FromEntity(user *entity.User) *UserModel {
	m := &UserModel{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.PasswordHash != "" {
		hash := user.PasswordHash
		m.PasswordHash = &hash
	}
	if user.GoogleID != "" {
		googleID := user.GoogleID
		m.GoogleID = &googleID
	}

	return m
}
