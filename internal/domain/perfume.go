package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Concentrations accepted for a perfume
var Concentrations = []string{"EDT", "EDP", "Parfum", "Cologne"}

// Audiences accepted for a perfume
var Audiences = []string{"male", "female", "unisex"}

// Perfume is a catalog entry members can review
type Perfume struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name" validate:"required,min=2,max=100"`
	ImageURI       string     `json:"image_uri" db:"image_uri" validate:"required"`
	Price          float64    `json:"price" db:"price" validate:"gte=0"`
	Concentration  string     `json:"concentration" db:"concentration" validate:"required,concentration"`
	Description    string     `json:"description" db:"description" validate:"required,min=10,max=1000"`
	Ingredients    string     `json:"ingredients" db:"ingredients"`
	Volume         int        `json:"volume" db:"volume" validate:"min=5,max=500"`
	TargetAudience string     `json:"target_audience" db:"target_audience" validate:"required,audience"`
	BrandID        uuid.UUID  `json:"brand_id" db:"brand_id" validate:"required"`
	BrandName      string     `json:"brand_name,omitempty" db:"brand_name"`
	AverageRating  float64    `json:"average_rating" db:"average_rating"`
	CommentCount   int        `json:"comment_count" db:"comment_count"`
	Version        int        `json:"version" db:"version"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// PerfumeDetail is a perfume together with its comments in insertion order
type PerfumeDetail struct {
	*Perfume
	Comments []*Comment `json:"comments"`
}

// PerfumeFilter narrows a perfume listing
type PerfumeFilter struct {
	Search  string
	BrandID *uuid.UUID
}

// PerfumeRepository defines the interface for perfume data access
type PerfumeRepository interface {
	// Create creates a new perfume; ErrBrandNotFound when the brand is not live
	Create(ctx context.Context, perfume *Perfume) error

	// GetByID retrieves a perfume by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Perfume, error)

	// Exists reports whether a live perfume has the given ID
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List retrieves a filtered, paginated list (excludes soft-deleted)
	List(ctx context.Context, filter PerfumeFilter, limit, offset int) ([]*Perfume, error)

	// Count returns the number of perfumes matching filter (excludes soft-deleted)
	Count(ctx context.Context, filter PerfumeFilter) (int, error)

	// Search matches keyword against name, description and brand name
	Search(ctx context.Context, keyword string) ([]*Perfume, error)

	// Update updates an existing perfume using optimistic locking on Version
	Update(ctx context.Context, perfume *Perfume) error

	// Delete soft-deletes a perfume and removes its comments
	Delete(ctx context.Context, id uuid.UUID) error
}
