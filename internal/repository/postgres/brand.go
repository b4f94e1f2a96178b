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

const brandNameLiveKey = "brands_name_live_key"

// BrandRepository implements domain.BrandRepository for PostgreSQL
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository creates a new PostgreSQL brand repository
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// Create creates a new brand
func (r *BrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	query := `
		INSERT INTO brands (name, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, brand.Name, time.Now()).
		Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, brandNameLiveKey) {
			return domain.ErrBrandNameTaken
		}
		return err
	}

	return nil
}

// GetByID retrieves a live brand by ID
func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	query := `
		SELECT id, name, created_at, updated_at, deleted_at
		FROM brands
		WHERE id = $1 AND deleted_at IS NULL
	`

	var brand domain.Brand
	if err := r.db.GetContext(ctx, &brand, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBrandNotFound
		}
		return nil, err
	}

	return &brand, nil
}

// List retrieves all live brands by name
func (r *BrandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	query := `
		SELECT id, name, created_at, updated_at, deleted_at
		FROM brands
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`

	brands := []*domain.Brand{}
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, err
	}

	return brands, nil
}

// Update renames a live brand
func (r *BrandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	query := `
		UPDATE brands
		SET name = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, brand.Name, time.Now(), brand.ID).
		Scan(&brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBrandNotFound
		}
		if database.IsUniqueViolation(err, brandNameLiveKey) {
			return domain.ErrBrandNameTaken
		}
		return err
	}

	return nil
}

// Delete soft-deletes a brand unless live perfumes still reference it.
// The brand row is locked so a concurrent perfume insert cannot slip in between.
func (r *BrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked,
		`SELECT id FROM brands WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBrandNotFound
		}
		return err
	}

	var inUse bool
	err = tx.GetContext(ctx, &inUse,
		`SELECT EXISTS(SELECT 1 FROM perfumes WHERE brand_id = $1 AND deleted_at IS NULL)`, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrBrandInUse
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE brands SET deleted_at = $1 WHERE id = $2`, time.Now(), id); err != nil {
		return err
	}

	return tx.Commit()
}
