package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a write collides with existing state
	// (duplicate review, taken name, stale version)
	ErrConflict = errors.New("conflict occurred")

	// ErrForbidden is returned when the caller may not perform the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// Specific errors. Each wraps one of the taxonomy errors above so callers
// can match either the precise cause or its class.
var (
	ErrProductNotFound = fmt.Errorf("perfume %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrBrandNotFound   = fmt.Errorf("brand %w", ErrNotFound)
	ErrMemberNotFound  = fmt.Errorf("member %w", ErrNotFound)

	ErrAlreadyReviewed  = fmt.Errorf("%w: member has already reviewed this perfume", ErrConflict)
	ErrPerfumeNameTaken = fmt.Errorf("%w: perfume name already exists", ErrConflict)
	ErrBrandNameTaken   = fmt.Errorf("%w: brand name already exists", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrBrandInUse       = fmt.Errorf("%w: brand still has perfumes", ErrConflict)

	ErrNotAuthor   = fmt.Errorf("%w: only the author may modify this comment", ErrForbidden)
	ErrAdminReview = fmt.Errorf("%w: administrators may not post reviews", ErrForbidden)

	ErrInvalidRating    = fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	ErrEmptyContent     = fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
	ErrContentTooLong   = fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, MaxContentLength)
	ErrPasswordMismatch = fmt.Errorf("%w: new password and confirmation do not match", ErrInvalidInput)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
)

// Internal wraps a storage or infrastructure failure so it surfaces as ErrInternal
// while keeping the cause for logs.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// StorageError passes through errors that already belong to the taxonomy and
// wraps anything else with Internal.
func StorageError(op string, err error) error {
	for _, known := range []error{ErrNotFound, ErrConflict, ErrForbidden, ErrUnauthorized, ErrInvalidInput, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	return Internal(op, err)
}
