package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// BrandService is the brand API the handler relies on
type BrandService interface {
	List(ctx context.Context) ([]*domain.Brand, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	ListPerfumes(ctx context.Context, id uuid.UUID) ([]*domain.Perfume, error)
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BrandHandler handles HTTP requests for brands
type BrandHandler struct {
	service BrandService
	logger  *logger.Logger
}

// NewBrandHandler creates a new brand handler
func NewBrandHandler(service BrandService, log *logger.Logger) *BrandHandler {
	return &BrandHandler{
		service: service,
		logger:  log,
	}
}

// BrandRequest represents the request body for creating or renaming a brand
type BrandRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/v1/brands
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, brands)
}

// GetByID handles GET /api/v1/brands/{id}
func (h *BrandHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	brand, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, brand)
}

// ListPerfumes handles GET /api/v1/brands/{id}/perfumes
func (h *BrandHandler) ListPerfumes(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	perfumes, err := h.service.ListPerfumes(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, perfumes)
}

// Create handles POST /api/v1/brands
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	brand := &domain.Brand{Name: req.Name}
	if err := h.service.Create(r.Context(), brand); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, brand)
}

// Update handles PUT /api/v1/brands/{id}
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	var req BrandRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	brand := &domain.Brand{ID: id, Name: req.Name}
	if err := h.service.Update(r.Context(), brand); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, brand)
}

// Delete handles DELETE /api/v1/brands/{id}
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Brand deleted")
}
