package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Member is a registered user of the catalog
type Member struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         string     `json:"name" db:"name"`
	YOB          *int       `json:"yob,omitempty" db:"yob"`
	Gender       *bool      `json:"gender,omitempty" db:"gender"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Identity is the authenticated caller of a request
type Identity struct {
	MemberID uuid.UUID
	IsAdmin  bool
}

// MemberRepository defines the interface for member data access
type MemberRepository interface {
	// Create inserts a member; ErrEmailTaken on duplicate email
	Create(ctx context.Context, member *Member) error

	// GetByID retrieves a live member by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// GetByEmail retrieves a live member by email
	GetByEmail(ctx context.Context, email string) (*Member, error)

	// List retrieves all members including soft-deleted ones
	List(ctx context.Context) ([]*Member, error)

	// Update persists profile fields
	Update(ctx context.Context, member *Member) error

	// UpdatePassword replaces the password hash
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error

	// Delete soft-deletes a member
	Delete(ctx context.Context, id uuid.UUID) error
}
