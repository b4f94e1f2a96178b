package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/database"
)

const perfumeNameLiveKey = "perfumes_name_live_key"

const perfumeColumns = `
	p.id, p.name, p.image_uri, p.price, p.concentration, p.description, p.ingredients,
	p.volume, p.target_audience, p.brand_id, COALESCE(b.name, '') AS brand_name,
	p.average_rating, p.comment_count, p.version, p.created_at, p.updated_at, p.deleted_at
`

// PerfumeRepository implements domain.PerfumeRepository for PostgreSQL
type PerfumeRepository struct {
	db *sqlx.DB
}

// NewPerfumeRepository creates a new PostgreSQL perfume repository
func NewPerfumeRepository(db *sqlx.DB) *PerfumeRepository {
	return &PerfumeRepository{db: db}
}

// Create inserts a perfume under a live brand. The brand row is share-locked so a
// concurrent brand Delete either waits and sees the perfume or wins and the insert finds no brand.
func (r *PerfumeRepository) Create(ctx context.Context, perfume *domain.Perfume) error {
	query := `
		WITH live AS (
			SELECT id FROM brands
			WHERE id = $9 AND deleted_at IS NULL
			FOR SHARE
		)
		INSERT INTO perfumes (
			name, image_uri, price, concentration, description, ingredients,
			volume, target_audience, brand_id, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, live.id, $10, $10
		FROM live
		RETURNING id, average_rating, comment_count, version, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		perfume.Name,
		perfume.ImageURI,
		perfume.Price,
		perfume.Concentration,
		perfume.Description,
		perfume.Ingredients,
		perfume.Volume,
		perfume.TargetAudience,
		perfume.BrandID,
		time.Now(),
	).Scan(
		&perfume.ID,
		&perfume.AverageRating,
		&perfume.CommentCount,
		&perfume.Version,
		&perfume.CreatedAt,
		&perfume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBrandNotFound
		}
		if database.IsUniqueViolation(err, perfumeNameLiveKey) {
			return domain.ErrPerfumeNameTaken
		}
		return err
	}

	return nil
}

// GetByID retrieves a live perfume with its brand name
func (r *PerfumeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Perfume, error) {
	query := `SELECT ` + perfumeColumns + `
		FROM perfumes p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	var perfume domain.Perfume
	if err := r.db.GetContext(ctx, &perfume, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	return &perfume, nil
}

// Exists reports whether a live perfume has the given ID
func (r *PerfumeRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM perfumes WHERE id = $1 AND deleted_at IS NULL)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}

// List retrieves a filtered, paginated list of live perfumes, newest first
func (r *PerfumeRepository) List(ctx context.Context, filter domain.PerfumeFilter, limit, offset int) ([]*domain.Perfume, error) {
	where, args := perfumeWhere(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s
		FROM perfumes p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, perfumeColumns, where, len(args)-1, len(args))

	perfumes := []*domain.Perfume{}
	if err := r.db.SelectContext(ctx, &perfumes, query, args...); err != nil {
		return nil, err
	}

	return perfumes, nil
}

// Count returns the number of live perfumes matching filter
func (r *PerfumeRepository) Count(ctx context.Context, filter domain.PerfumeFilter) (int, error) {
	where, args := perfumeWhere(filter)
	query := `SELECT COUNT(*) FROM perfumes p WHERE ` + where

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

// Search matches keyword against perfume name, description and brand name
func (r *PerfumeRepository) Search(ctx context.Context, keyword string) ([]*domain.Perfume, error) {
	query := `SELECT ` + perfumeColumns + `
		FROM perfumes p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.deleted_at IS NULL
		  AND (p.name ILIKE $1 OR p.description ILIKE $1 OR (b.deleted_at IS NULL AND b.name ILIKE $1))
		ORDER BY p.name ASC
	`

	perfumes := []*domain.Perfume{}
	if err := r.db.SelectContext(ctx, &perfumes, query, likePattern(keyword)); err != nil {
		return nil, err
	}

	return perfumes, nil
}

// Update updates a perfume when its version matches, bumping the version
func (r *PerfumeRepository) Update(ctx context.Context, perfume *domain.Perfume) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var brandID uuid.UUID
	brandQuery := `SELECT id FROM brands WHERE id = $1 AND deleted_at IS NULL FOR SHARE`
	if err := tx.GetContext(ctx, &brandID, brandQuery, perfume.BrandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBrandNotFound
		}
		return err
	}

	query := `
		UPDATE perfumes
		SET name = $1, image_uri = $2, price = $3, concentration = $4, description = $5,
		    ingredients = $6, volume = $7, target_audience = $8, brand_id = $9,
		    updated_at = $10, version = version + 1
		WHERE id = $11 AND deleted_at IS NULL AND version = $12
		RETURNING version, updated_at
	`

	err = tx.QueryRowxContext(
		ctx,
		query,
		perfume.Name,
		perfume.ImageURI,
		perfume.Price,
		perfume.Concentration,
		perfume.Description,
		perfume.Ingredients,
		perfume.Volume,
		perfume.TargetAudience,
		perfume.BrandID,
		time.Now(),
		perfume.ID,
		perfume.Version,
	).Scan(&perfume.Version, &perfume.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		if database.IsUniqueViolation(err, perfumeNameLiveKey) {
			return domain.ErrPerfumeNameTaken
		}
		return err
	}

	return tx.Commit()
}

// Delete soft-deletes a perfume and removes its comments in one transaction
func (r *PerfumeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE perfumes SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE perfume_id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func perfumeWhere(filter domain.PerfumeFilter) (string, []interface{}) {
	conds := []string{"p.deleted_at IS NULL"}
	var args []interface{}

	if filter.BrandID != nil {
		args = append(args, *filter.BrandID)
		conds = append(conds, fmt.Sprintf("p.brand_id = $%d", len(args)))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, likePattern(s))
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE match, escaping wildcards
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}
