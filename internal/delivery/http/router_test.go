package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/perfume_catalog/internal/config"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/auth"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

type memberDirectory map[uuid.UUID]*domain.Member

func (d memberDirectory) Profile(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	if m, ok := d[id]; ok {
		return m, nil
	}
	return nil, domain.ErrMemberNotFound
}

// setupRouter wires the router with nil services; every request in these
// tests is answered before a service would be reached.
func setupRouter(t *testing.T, members memberDirectory) (http.Handler, *auth.TokenManager) {
	t.Helper()

	log := logger.Nop()
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)
	cfg := &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	handlers := Handlers{
		Auth:     handler.NewAuthHandler(nil, handler.CookieConfig{Name: "jwt", TTL: time.Hour}, log),
		Member:   handler.NewMemberHandler(nil, log),
		Brand:    handler.NewBrandHandler(nil, log),
		Perfume:  handler.NewPerfumeHandler(nil, log),
		Feedback: handler.NewFeedbackHandler(nil, log),
	}

	rt := NewRouter(
		handlers,
		middleware.NewAuth(tokens, members, "jwt", log),
		middleware.NewRateLimiter(1, 1),
		cfg,
		log,
	)
	return rt.Setup(), tokens
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupRouter(t, memberDirectory{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r, _ := setupRouter(t, memberDirectory{})
	perfumeID := uuid.NewString()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/perfumes/" + perfumeID + "/comments"},
		{http.MethodPut, "/api/v1/perfumes/" + perfumeID + "/comments/" + uuid.NewString()},
		{http.MethodDelete, "/api/v1/perfumes/" + perfumeID + "/comments/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/perfumes"},
		{http.MethodPost, "/api/v1/brands"},
		{http.MethodGet, "/api/v1/members/me"},
		{http.MethodGet, "/api/v1/members"},
		{http.MethodPost, "/api/v1/auth/admin"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AdminRoutesRejectMembers(t *testing.T) {
	memberID := uuid.New()
	r, tokens := setupRouter(t, memberDirectory{
		memberID: {ID: memberID, Email: "ann@example.com"},
	})

	token, err := tokens.Issue(&domain.Member{ID: memberID})
	require.NoError(t, err)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/perfumes"},
		{http.MethodDelete, "/api/v1/perfumes/" + uuid.NewString()},
		{http.MethodPut, "/api/v1/brands/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/members"},
		{http.MethodDelete, "/api/v1/members/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/auth/admin"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	r, _ := setupRouter(t, memberDirectory{})

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := setupRouter(t, memberDirectory{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
