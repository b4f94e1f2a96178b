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

const memberEmailKey = "members_email_key"

const memberColumns = `id, email, password_hash, name, yob, gender, is_admin, created_at, updated_at, deleted_at`

// MemberRepository implements domain.MemberRepository for PostgreSQL
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new PostgreSQL member repository
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create inserts a member
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (email, password_hash, name, yob, gender, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		member.Email,
		member.PasswordHash,
		member.Name,
		member.YOB,
		member.Gender,
		member.IsAdmin,
		time.Now(),
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, memberEmailKey) {
			return domain.ErrEmailTaken
		}
		return err
	}

	return nil
}

// GetByID retrieves a live member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a live member by email, case-insensitively
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`
	return r.getOne(ctx, query, email)
}

func (r *MemberRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// List retrieves all members, soft-deleted included, oldest first
func (r *MemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at ASC`

	members := []*domain.Member{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, err
	}

	return members, nil
}

// Update persists profile fields of a live member
func (r *MemberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET email = $1, name = $2, yob = $3, gender = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		member.Email,
		member.Name,
		member.YOB,
		member.Gender,
		time.Now(),
		member.ID,
	).Scan(&member.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		if database.IsUniqueViolation(err, memberEmailKey) {
			return domain.ErrEmailTaken
		}
		return err
	}

	return nil
}

// UpdatePassword replaces the password hash of a live member
func (r *MemberRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE members SET password_hash = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`
	return r.execOne(ctx, query, hash, time.Now(), id)
}

// Delete soft-deletes a member
func (r *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE members SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	return r.execOne(ctx, query, time.Now(), id)
}

func (r *MemberRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}
