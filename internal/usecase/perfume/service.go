package perfume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// CommentLister returns a perfume's comments in insertion order
type CommentLister interface {
	ListForPerfume(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error)
}

// CacheInvalidator drops cached data of a perfume
type CacheInvalidator interface {
	InvalidatePerfume(ctx context.Context, perfumeID uuid.UUID) error
}

// Service handles perfume business logic
type Service struct {
	repo     domain.PerfumeRepository
	comments CommentLister
	cache    CacheInvalidator
	logger   *logger.Logger
}

// NewService creates a new perfume service
func NewService(repo domain.PerfumeRepository, comments CommentLister, cache CacheInvalidator, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		comments: comments,
		cache:    cache,
		logger:   log,
	}
}

// Create creates a new perfume
func (s *Service) Create(ctx context.Context, perfume *domain.Perfume) error {
	if err := validator.Validate(perfume); err != nil {
		s.logger.Debugf("Perfume validation failed: %v", err)
		return err
	}

	if err := s.repo.Create(ctx, perfume); err != nil {
		s.logger.Error("Failed to create perfume", err)
		return domain.StorageError("create perfume", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
	}).Info("Perfume created successfully")

	return nil
}

// GetByID retrieves a perfume by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Perfume, error) {
	perfume, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Perfume not found: %s", id)
		} else {
			s.logger.Error("Failed to get perfume", err)
		}
		return nil, domain.StorageError("get perfume", err)
	}

	return perfume, nil
}

// GetDetail retrieves a perfume together with its comments
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*domain.PerfumeDetail, error) {
	perfume, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListForPerfume(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.PerfumeDetail{Perfume: perfume, Comments: comments}, nil
}

// List retrieves a filtered, paginated list of perfumes and the total match count
func (s *Service) List(ctx context.Context, filter domain.PerfumeFilter, limit, offset int) ([]*domain.Perfume, int, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	perfumes, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list perfumes", err)
		return nil, 0, domain.StorageError("list perfumes", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count perfumes", err)
		return nil, 0, domain.StorageError("count perfumes", err)
	}

	return perfumes, total, nil
}

// Search matches keyword against perfume names, descriptions and brand names
func (s *Service) Search(ctx context.Context, keyword string) ([]*domain.Perfume, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: search keyword is required", domain.ErrInvalidInput)
	}

	perfumes, err := s.repo.Search(ctx, keyword)
	if err != nil {
		s.logger.Error("Failed to search perfumes", err)
		return nil, domain.StorageError("search perfumes", err)
	}

	return perfumes, nil
}

// Update updates an existing perfume. perfume.Version must match the stored version.
func (s *Service) Update(ctx context.Context, perfume *domain.Perfume) error {
	if err := validator.Validate(perfume); err != nil {
		s.logger.Debugf("Perfume validation failed: %v", err)
		return err
	}

	if err := s.repo.Update(ctx, perfume); err != nil {
		// A missed version match and a missing row look alike at the storage level
		if errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrPerfumeNameTaken) {
			exists, existsErr := s.repo.Exists(ctx, perfume.ID)
			if existsErr == nil && !exists {
				return domain.ErrProductNotFound
			}
		}
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to update perfume", err)
		}
		return domain.StorageError("update perfume", err)
	}

	s.invalidate(ctx, perfume.ID)

	s.logger.WithFields(map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
		"version":    perfume.Version,
	}).Info("Perfume updated successfully")

	return nil
}

// Delete soft-deletes a perfume and removes its comments
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete perfume", err)
		}
		return domain.StorageError("delete perfume", err)
	}

	s.invalidate(ctx, id)

	s.logger.WithFields(map[string]interface{}{
		"perfume_id": id,
	}).Info("Perfume deleted successfully")

	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidatePerfume(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for perfume %s: %v", id, err)
	}
}
