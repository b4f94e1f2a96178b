package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Brand groups perfumes under a maker name
type Brand struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name" validate:"required,min=2,max=100"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *Brand) error

	// GetByID retrieves a brand by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Brand, error)

	List(ctx context.Context) ([]*Brand, error)

	Update(ctx context.Context, brand *Brand) error

	// Delete soft-deletes a brand; ErrBrandInUse while live perfumes reference it
	Delete(ctx context.Context, id uuid.UUID) error
}
