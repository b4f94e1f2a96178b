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
	"github.com/Pesokrava/perfume_catalog/internal/usecase/member"
)

// MemberService is the profile and administration API the handler relies on
type MemberService interface {
	Profile(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch member.ProfilePatch) (*domain.Member, error)
	ChangePassword(ctx context.Context, id uuid.UUID, change member.PasswordChange) error
	List(ctx context.Context) ([]*domain.Member, error)
	Delete(ctx context.Context, actor domain.Identity, id uuid.UUID) error
}

// MemberHandler handles member profile requests
type MemberHandler struct {
	service MemberService
	logger  *logger.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(service MemberService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		logger:  log,
	}
}

// Me handles GET /api/v1/members/me
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	m, err := h.service.Profile(r.Context(), identity.MemberID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, m)
}

// UpdateMe handles PUT /api/v1/members/me
func (h *MemberHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var patch member.ProfilePatch
	if err := request.DecodeJSON(r, &patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.service.UpdateProfile(r.Context(), identity.MemberID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, m)
}

// ChangePassword handles PUT /api/v1/members/me/password
func (h *MemberHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var change member.PasswordChange
	if err := request.DecodeJSON(r, &change); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity.MemberID, change); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Password updated")
}

// List handles GET /api/v1/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, members)
}

// Delete handles DELETE /api/v1/members/{id}
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Member deleted")
}
