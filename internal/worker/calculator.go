package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// Calculator recomputes a perfume's rating aggregates from its comments
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
	now    func() time.Time
}

// RatingStats is the stored aggregate of a perfume's comments
type RatingStats struct {
	AverageRating float64 `db:"average_rating"`
	CommentCount  int     `db:"comment_count"`
}

// NewCalculator creates a new rating calculator
func NewCalculator(db *sqlx.DB, logger *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// CalculateAndUpdate recomputes average_rating and comment_count for a perfume
// from scratch. A missing or deleted perfume is skipped, not an error.
// version is not bumped; it only guards admin edits.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, perfumeID uuid.UUID) error {
	query := `
		UPDATE perfumes
		SET
			average_rating = COALESCE(
				(SELECT ROUND(AVG(rating)::numeric, 1)
				 FROM comments
				 WHERE perfume_id = $1),
				0
			),
			comment_count = (SELECT COUNT(*) FROM comments WHERE perfume_id = $1),
			updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING average_rating, comment_count
	`

	var stats RatingStats
	err := c.db.QueryRowxContext(ctx, query, perfumeID, c.now()).StructScan(&stats)
	if errors.Is(err, sql.ErrNoRows) {
		c.logger.WithFields(map[string]any{
			"perfume_id": perfumeID.String(),
		}).Info("Perfume not found or deleted, skipping rating update")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update perfume rating: %w", err)
	}

	c.logger.WithFields(map[string]any{
		"perfume_id":     perfumeID.String(),
		"average_rating": stats.AverageRating,
		"comment_count":  stats.CommentCount,
	}).Info("Updated perfume rating")

	return nil
}
