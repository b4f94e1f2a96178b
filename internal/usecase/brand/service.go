package brand

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/validator"
)

// perfumesPerBrand caps ListPerfumes
const perfumesPerBrand = 100

// PerfumeLister lists perfumes matching a filter
type PerfumeLister interface {
	List(ctx context.Context, filter domain.PerfumeFilter, limit, offset int) ([]*domain.Perfume, error)
}

// Service handles brand business logic
type Service struct {
	repo     domain.BrandRepository
	perfumes PerfumeLister
	logger   *logger.Logger
}

// NewService creates a new brand service
func NewService(repo domain.BrandRepository, perfumes PerfumeLister, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		perfumes: perfumes,
		logger:   log,
	}
}

// List returns all live brands
func (s *Service) List(ctx context.Context) ([]*domain.Brand, error) {
	brands, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list brands", err)
		return nil, domain.StorageError("list brands", err)
	}
	return brands, nil
}

// GetByID retrieves a brand by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get brand", err)
		}
		return nil, domain.StorageError("get brand", err)
	}
	return brand, nil
}

// ListPerfumes returns the perfumes of a live brand
func (s *Service) ListPerfumes(ctx context.Context, id uuid.UUID) ([]*domain.Perfume, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	perfumes, err := s.perfumes.List(ctx, domain.PerfumeFilter{BrandID: &id}, perfumesPerBrand, 0)
	if err != nil {
		s.logger.Error("Failed to list brand perfumes", err)
		return nil, domain.StorageError("list brand perfumes", err)
	}
	return perfumes, nil
}

// Create creates a new brand
func (s *Service) Create(ctx context.Context, brand *domain.Brand) error {
	if err := validator.Validate(brand); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, brand); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.logger.Error("Failed to create brand", err)
		}
		return domain.StorageError("create brand", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	}).Info("Brand created successfully")

	return nil
}

// Update renames a brand
func (s *Service) Update(ctx context.Context, brand *domain.Brand) error {
	if err := validator.Validate(brand); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, brand); err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to update brand", err)
		}
		return domain.StorageError("update brand", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	}).Info("Brand updated successfully")

	return nil
}

// Delete hides a brand. Brands that still have live perfumes are kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete brand", err)
		}
		return domain.StorageError("delete brand", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"brand_id": id,
	}).Info("Brand deleted successfully")

	return nil
}
