package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// FeedbackService is the comment API the handler relies on
type FeedbackService interface {
	Submit(ctx context.Context, perfumeID uuid.UUID, identity domain.Identity, rating int, content string) (*domain.Comment, error)
	Update(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity, patch domain.CommentPatch) (*domain.Comment, error)
	Delete(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity) error
	ListForPerfume(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error)
}

// FeedbackHandler handles HTTP requests for perfume comments
type FeedbackHandler struct {
	service FeedbackService
	logger  *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  log,
	}
}

// SubmitCommentRequest represents the request body for reviewing a perfume
type SubmitCommentRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// UpdateCommentRequest represents a partial comment update
type UpdateCommentRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}

// List handles GET /api/v1/perfumes/{id}/comments
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	perfumeID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return
	}

	comments, err := h.service.ListForPerfume(r.Context(), perfumeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, comments)
}

// Submit handles POST /api/v1/perfumes/{id}/comments
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	perfumeID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return
	}

	var req SubmitCommentRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.service.Submit(r.Context(), perfumeID, identity, req.Rating, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, comment)
}

// Update handles PUT /api/v1/perfumes/{id}/comments/{commentId}
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, perfumeID, commentID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.service.Update(r.Context(), perfumeID, commentID, identity, domain.CommentPatch{
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, comment)
}

// Delete handles DELETE /api/v1/perfumes/{id}/comments/{commentId}
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, perfumeID, commentID, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), perfumeID, commentID, identity); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Comment deleted")
}

func (h *FeedbackHandler) target(w http.ResponseWriter, r *http.Request) (domain.Identity, uuid.UUID, uuid.UUID, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return domain.Identity{}, uuid.Nil, uuid.Nil, false
	}

	perfumeID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid perfume ID")
		return domain.Identity{}, uuid.Nil, uuid.Nil, false
	}

	commentID, err := request.GetUUIDParam(r, "commentId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid comment ID")
		return domain.Identity{}, uuid.Nil, uuid.Nil, false
	}

	return identity, perfumeID, commentID, true
}
