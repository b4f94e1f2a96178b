package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

type contextKey struct{}

var identityKey = contextKey{}

// TokenVerifier turns a session token into the identity it was issued for
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// MemberLookup loads live members
type MemberLookup interface {
	Profile(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

// Auth authenticates requests from a bearer token or the session cookie
type Auth struct {
	tokens     TokenVerifier
	members    MemberLookup
	cookieName string
	logger     *logger.Logger
}

// NewAuth creates the authentication middleware set
func NewAuth(tokens TokenVerifier, members MemberLookup, cookieName string, log *logger.Logger) *Auth {
	return &Auth{
		tokens:     tokens,
		members:    members,
		cookieName: cookieName,
		logger:     log,
	}
}

// Authenticate rejects requests without a valid token for a live member and
// stores the caller's identity in the request context
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.token(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity, err := a.tokens.Verify(token)
		if err != nil {
			a.logger.Debugf("Rejected token: %v", err)
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Existence and role are read from storage, not trusted from the token
		member, err := a.members.Profile(r.Context(), identity.MemberID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				response.Error(w, http.StatusUnauthorized, "Account no longer exists")
				return
			}
			a.logger.Error("Failed to load member for authentication", err)
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		identity.IsAdmin = member.IsAdmin

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (a *Auth) token(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(a.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAdmin lets only administrators through. It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !identity.IsAdmin {
			response.Error(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated caller stored in ctx
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
