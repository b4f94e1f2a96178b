package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/database"
)

const commentPerfumeAuthorKey = "comments_perfume_author_key"

const commentColumns = `
	c.id, c.perfume_id, c.author_id, COALESCE(m.name, '') AS author_name,
	c.rating, c.content, c.created_at, c.updated_at
`

// CommentRepository implements domain.CommentRepository for PostgreSQL
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new PostgreSQL comment repository
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment. The insert only happens when the perfume is live, and the
// (perfume_id, author_id) unique index rejects a second review even under concurrency.
// The perfume row is share-locked so a concurrent Delete waits for the insert.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		WITH live AS (
			SELECT id FROM perfumes
			WHERE id = $1 AND deleted_at IS NULL
			FOR SHARE
		)
		INSERT INTO comments (perfume_id, author_id, rating, content)
		SELECT live.id, $2, $3, $4
		FROM live
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		comment.PerfumeID,
		comment.AuthorID,
		comment.Rating,
		comment.Content,
	).Scan(
		&comment.ID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		if database.IsUniqueViolation(err, commentPerfumeAuthorKey) {
			return domain.ErrAlreadyReviewed
		}
		return err
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c
		LEFT JOIN members m ON m.id = c.author_id
		WHERE c.id = $1
	`

	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}

	return &comment, nil
}

// GetByPerfumeAndAuthor retrieves the comment an author left on a perfume
func (r *CommentRepository) GetByPerfumeAndAuthor(ctx context.Context, perfumeID, authorID uuid.UUID) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c
		LEFT JOIN members m ON m.id = c.author_id
		WHERE c.perfume_id = $1 AND c.author_id = $2
	`

	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, perfumeID, authorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}

	return &comment, nil
}

// ListByPerfumeID retrieves a perfume's comments in insertion order
func (r *CommentRepository) ListByPerfumeID(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c
		LEFT JOIN members m ON m.id = c.author_id
		WHERE c.perfume_id = $1
		ORDER BY c.seq ASC
	`

	comments := []*domain.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, perfumeID); err != nil {
		return nil, err
	}

	return comments, nil
}

// PerfumeIDsByAuthor lists the perfumes an author has reviewed
func (r *CommentRepository) PerfumeIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT perfume_id FROM comments WHERE author_id = $1`, authorID); err != nil {
		return nil, err
	}
	return ids, nil
}

// Update persists rating and content of an existing comment
func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET rating = $1, content = $2, updated_at = $3
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		comment.Rating,
		comment.Content,
		time.Now(),
		comment.ID,
	).Scan(&comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCommentNotFound
		}
		return err
	}

	return nil
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrCommentNotFound
	}

	return nil
}
