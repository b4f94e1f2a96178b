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

// PerfumeService is the perfume API the handler relies on
type PerfumeService interface {
	Create(ctx context.Context, perfume *domain.Perfume) error
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.PerfumeDetail, error)
	List(ctx context.Context, filter domain.PerfumeFilter, limit, offset int) ([]*domain.Perfume, int, error)
	Search(ctx context.Context, keyword string) ([]*domain.Perfume, error)
	Update(ctx context.Context, perfume *domain.Perfume) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PerfumeHandler handles HTTP requests for perfumes
type PerfumeHandler struct {
	service PerfumeService
	logger  *logger.Logger
}

// NewPerfumeHandler creates a new perfume handler
func NewPerfumeHandler(service PerfumeService, log *logger.Logger) *PerfumeHandler {
	return &PerfumeHandler{
		service: service,
		logger:  log,
	}
}

// PerfumeRequest represents the request body for creating a perfume
type PerfumeRequest struct {
	Name           string    `json:"name"`
	ImageURI       string    `json:"image_uri"`
	Price          float64   `json:"price"`
	Concentration  string    `json:"concentration"`
	Description    string    `json:"description"`
	Ingredients    string    `json:"ingredients"`
	Volume         int       `json:"volume"`
	TargetAudience string    `json:"target_audience"`
	BrandID        uuid.UUID `json:"brand_id"`
}

// UpdatePerfumeRequest carries the full perfume and the version it was read at
type UpdatePerfumeRequest struct {
	PerfumeRequest
	Version int `json:"version"`
}

func (req PerfumeRequest) toDomain() *domain.Perfume {
	return &domain.Perfume{
		Name:           req.Name,
		ImageURI:       req.ImageURI,
		Price:          req.Price,
		Concentration:  req.Concentration,
		Description:    req.Description,
		Ingredients:    req.Ingredients,
		Volume:         req.Volume,
		TargetAudience: req.TargetAudience,
		BrandID:        req.BrandID,
	}
}

// Create handles POST /api/v1/perfumes
func (h *PerfumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PerfumeRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	perfume := req.toDomain()
	if err := h.service.Create(r.Context(), perfume); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, perfume)
}

// GetByID handles GET /api/v1/perfumes/{id} and includes the perfume's comments
func (h *PerfumeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, detail)
}

// List handles GET /api/v1/perfumes?search=&brand_id=&limit=&offset=
func (h *PerfumeHandler) List(w http.ResponseWriter, r *http.Request) {
	brandID, err := request.GetUUIDQuery(r, "brand_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	filter := domain.PerfumeFilter{
		Search:  r.URL.Query().Get("search"),
		BrandID: brandID,
	}
	limit, offset := request.GetPaginationParams(r)

	perfumes, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Paginated(w, perfumes, total, limit, offset)
}

// Search handles GET /api/v1/perfumes/search?q=
func (h *PerfumeHandler) Search(w http.ResponseWriter, r *http.Request) {
	perfumes, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, perfumes)
}

// Update handles PUT /api/v1/perfumes/{id}
func (h *PerfumeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return
	}

	var req UpdatePerfumeRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	perfume := req.toDomain()
	perfume.ID = id
	perfume.Version = req.Version

	if err := h.service.Update(r.Context(), perfume); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, perfume)
}

// Delete handles DELETE /api/v1/perfumes/{id}
func (h *PerfumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Perfume deleted")
}
