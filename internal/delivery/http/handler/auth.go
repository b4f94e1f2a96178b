package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/member"
)

// AuthService is the registration and login API the handler relies on
type AuthService interface {
	Register(ctx context.Context, reg member.Registration) (*member.Session, error)
	CreateAdmin(ctx context.Context, reg member.Registration) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (*member.Session, error)
}

// CookieConfig controls the session cookie set on login
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	service AuthService
	cookie  CookieConfig
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService, cookie CookieConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		logger:  log,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg member.Registration
	if err := request.DecodeJSON(r, &reg); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Register(r.Context(), reg)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setCookie(w, session.Token, int(h.cookie.TTL.Seconds()))
	response.Created(w, session)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setCookie(w, session.Token, int(h.cookie.TTL.Seconds()))
	response.Success(w, session)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "", -1)
	response.Message(w, "Logged out")
}

// CreateAdmin handles POST /api/v1/auth/admin
func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var reg member.Registration
	if err := request.DecodeJSON(r, &reg); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.CreateAdmin(r.Context(), reg)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, admin)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
