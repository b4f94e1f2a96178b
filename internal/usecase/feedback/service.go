// Package feedback guards every write to perfume comments: one review per
// member and perfume, and author-only edits and deletes.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/keylock"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CommentCache caches the comment list of a perfume. Entries are keyed by a
// per-perfume generation that InvalidatePerfume advances.
type CommentCache interface {
	Generation(ctx context.Context, perfumeID uuid.UUID) (int64, error)
	GetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64) ([]*domain.Comment, error)
	SetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64, comments []*domain.Comment) error
	InvalidatePerfume(ctx context.Context, perfumeID uuid.UUID) error
}

// PerfumeLookup answers whether a live perfume exists
type PerfumeLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Policy holds review rules that differ between deployments
type Policy struct {
	AllowAdminReviews bool
}

// Service handles comment business logic with caching and event publishing
type Service struct {
	comments  domain.CommentRepository
	perfumes  PerfumeLookup
	cache     CommentCache
	publisher EventPublisher
	policy    Policy
	locks     *keylock.KeyLock
	logger    *logger.Logger
}

// NewService creates a new feedback service
func NewService(
	comments domain.CommentRepository,
	perfumes PerfumeLookup,
	cache CommentCache,
	publisher EventPublisher,
	policy Policy,
	log *logger.Logger,
) *Service {
	return &Service{
		comments:  comments,
		perfumes:  perfumes,
		cache:     cache,
		publisher: publisher,
		policy:    policy,
		locks:     keylock.New(),
		logger:    log,
	}
}

// Submit creates the caller's single review of a perfume
func (s *Service) Submit(ctx context.Context, perfumeID uuid.UUID, identity domain.Identity, rating int, content string) (*domain.Comment, error) {
	if identity.IsAdmin && !s.policy.AllowAdminReviews {
		return nil, domain.ErrAdminReview
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	// Check-and-insert for one (perfume, author) pair runs one at a time in this
	// process; the unique index covers other instances.
	unlock := s.locks.Lock(pairKey(perfumeID, identity.MemberID))
	defer unlock()

	if err := s.ensurePerfume(ctx, perfumeID); err != nil {
		return nil, err
	}

	_, err := s.comments.GetByPerfumeAndAuthor(ctx, perfumeID, identity.MemberID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyReviewed
	case !errors.Is(err, domain.ErrCommentNotFound):
		s.logger.Error("Failed to look up existing comment", err)
		return nil, domain.StorageError("find existing comment", err)
	}

	comment := &domain.Comment{
		PerfumeID: perfumeID,
		AuthorID:  identity.MemberID,
		Rating:    rating,
		Content:   content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to create comment", err)
		}
		return nil, domain.StorageError("create comment", err)
	}

	s.afterWrite(ctx, domain.CommentCreated, comment)

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"perfume_id": perfumeID,
		"rating":     rating,
	}).Info("Comment created successfully")

	return comment, nil
}

// Update applies a partial change to a comment owned by the caller
func (s *Service) Update(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity, patch domain.CommentPatch) (*domain.Comment, error) {
	comment, err := s.ownedComment(ctx, perfumeID, commentID, identity)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if patch.Content != nil {
		if err := validateContent(*patch.Content); err != nil {
			return nil, err
		}
	}

	patch.Apply(comment)

	if err := s.comments.Update(ctx, comment); err != nil {
		s.logger.Error("Failed to update comment", err)
		return nil, domain.StorageError("update comment", err)
	}

	s.afterWrite(ctx, domain.CommentUpdated, comment)

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"perfume_id": perfumeID,
		"rating":     comment.Rating,
	}).Info("Comment updated successfully")

	return comment, nil
}

// Delete removes a comment owned by the caller
func (s *Service) Delete(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity) error {
	unlock := s.locks.Lock(pairKey(perfumeID, identity.MemberID))
	defer unlock()

	comment, err := s.ownedComment(ctx, perfumeID, commentID, identity)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		s.logger.Error("Failed to delete comment", err)
		return domain.StorageError("delete comment", err)
	}

	s.afterWrite(ctx, domain.CommentDeleted, comment)

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"perfume_id": perfumeID,
	}).Info("Comment deleted successfully")

	return nil
}

// ListForPerfume returns a perfume's comments in insertion order
func (s *Service) ListForPerfume(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	if err := s.ensurePerfume(ctx, perfumeID); err != nil {
		return nil, err
	}

	gen, err := s.cache.Generation(ctx, perfumeID)
	if err != nil {
		s.logger.Warnf("Failed to read cache generation for perfume %s: %v", perfumeID, err)
		return s.loadComments(ctx, perfumeID)
	}

	comments, err := s.cache.GetCommentsList(ctx, perfumeID, gen)
	if err == nil {
		s.logger.Debugf("Cache hit for perfume %s comments", perfumeID)
		return comments, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read cached comments for perfume %s: %v", perfumeID, err)
	}

	comments, err = s.loadComments(ctx, perfumeID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCommentsList(ctx, perfumeID, gen, comments); err != nil {
		s.logger.Warnf("Failed to cache comments for perfume %s: %v", perfumeID, err)
	}

	return comments, nil
}

func (s *Service) loadComments(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	comments, err := s.comments.ListByPerfumeID(ctx, perfumeID)
	if err != nil {
		s.logger.Error("Failed to list comments", err)
		return nil, domain.StorageError("list comments", err)
	}
	return comments, nil
}

// InvalidateAuthor drops the cached comment lists of every perfume the member
// has reviewed, so a renamed author is not served under the old name.
func (s *Service) InvalidateAuthor(ctx context.Context, authorID uuid.UUID) error {
	perfumeIDs, err := s.comments.PerfumeIDsByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error("Failed to list reviewed perfumes", err)
		return domain.StorageError("list reviewed perfumes", err)
	}

	var failed error
	for _, perfumeID := range perfumeIDs {
		if err := s.cache.InvalidatePerfume(ctx, perfumeID); err != nil {
			s.logger.Warnf("Failed to invalidate cache for perfume %s: %v", perfumeID, err)
			failed = err
		}
	}
	return failed
}

func (s *Service) ensurePerfume(ctx context.Context, perfumeID uuid.UUID) error {
	exists, err := s.perfumes.Exists(ctx, perfumeID)
	if err != nil {
		s.logger.Error("Failed to check perfume", err)
		return domain.StorageError("check perfume", err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return nil
}

// ownedComment loads a comment and checks that identity wrote it and that it
// belongs to perfumeID. Ownership is decided before anything about the payload.
func (s *Service) ownedComment(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get comment", err)
		}
		return nil, domain.StorageError("get comment", err)
	}

	if comment.AuthorID != identity.MemberID {
		return nil, domain.ErrNotAuthor
	}
	if comment.PerfumeID != perfumeID {
		return nil, domain.ErrCommentNotFound
	}

	return comment, nil
}

// afterWrite drops cached lists and announces the change. Neither failure
// undoes the write.
func (s *Service) afterWrite(ctx context.Context, eventType string, comment *domain.Comment) {
	if err := s.cache.InvalidatePerfume(ctx, comment.PerfumeID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for perfume %s: %v", comment.PerfumeID, err)
	}

	data, err := json.Marshal(domain.CommentEvent{
		Type:      eventType,
		PerfumeID: comment.PerfumeID,
		Timestamp: time.Now(),
		Comment:   comment,
	})
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for comment %s", comment.ID)
		return
	}

	if err := s.publisher.Publish(ctx, domain.CommentEventsSubject, data); err != nil {
		s.logger.Errorf(err, "Failed to publish event for comment %s", comment.ID)
	}
}

func validateRating(rating int) error {
	if !domain.ValidRating(rating) {
		return domain.ErrInvalidRating
	}
	return nil
}

func validateContent(content string) error {
	if domain.BlankContent(content) {
		return domain.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return domain.ErrContentTooLong
	}
	return nil
}

func pairKey(perfumeID, authorID uuid.UUID) string {
	return perfumeID.String() + "/" + authorID.String()
}
