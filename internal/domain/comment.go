package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 3

	MaxContentLength = 5000
)

// Comment is a rated review authored by one member on one perfume
type Comment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PerfumeID  uuid.UUID `json:"perfume_id" db:"perfume_id"`
	AuthorID   uuid.UUID `json:"author_id" db:"author_id"`
	AuthorName string    `json:"author_name,omitempty" db:"author_name"`
	Rating     int       `json:"rating" db:"rating" validate:"min=1,max=3"`
	Content    string    `json:"content" db:"content" validate:"required,max=5000"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CommentPatch carries a partial comment update; nil fields keep their value
type CommentPatch struct {
	Rating  *int
	Content *string
}

// Apply copies the provided fields onto c
func (p CommentPatch) Apply(c *Comment) {
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
}

// ValidRating reports whether r lies in the closed rating range
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// BlankContent reports whether s has no visible text
func BlankContent(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create inserts a comment for a live perfume. Returns ErrProductNotFound when the
	// perfume is missing and ErrAlreadyReviewed when the (perfume, author) pair exists.
	Create(ctx context.Context, comment *Comment) error

	// GetByID retrieves a comment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)

	// GetByPerfumeAndAuthor retrieves the comment an author left on a perfume
	GetByPerfumeAndAuthor(ctx context.Context, perfumeID, authorID uuid.UUID) (*Comment, error)

	// ListByPerfumeID retrieves a perfume's comments in insertion order
	ListByPerfumeID(ctx context.Context, perfumeID uuid.UUID) ([]*Comment, error)

	// PerfumeIDsByAuthor lists the perfumes an author has reviewed
	PerfumeIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)

	// Update persists rating and content of an existing comment
	Update(ctx context.Context, comment *Comment) error

	// Delete removes a comment
	Delete(ctx context.Context, id uuid.UUID) error
}
