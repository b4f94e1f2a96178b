package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Pesokrava/perfume_catalog/internal/config"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth     *handler.AuthHandler
	Member   *handler.MemberHandler
	Brand    *handler.BrandHandler
	Perfume  *handler.PerfumeHandler
	Feedback *handler.FeedbackHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers     Handlers
	auth         *middleware.Auth
	loginLimiter *middleware.RateLimiter
	logger       *logger.Logger
	cfg          *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	handlers Handlers,
	auth *middleware.Auth,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		handlers:     handlers,
		auth:         auth,
		loginLimiter: loginLimiter,
		logger:       log,
		cfg:          cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.With(rt.loginLimiter.Middleware).Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.With(rt.auth.Authenticate, middleware.RequireAdmin).Post("/admin", h.Auth.CreateAdmin)
		})

		r.Route("/members", func(r chi.Router) {
			r.Use(rt.auth.Authenticate)

			r.Get("/me", h.Member.Me)
			r.Put("/me", h.Member.UpdateMe)
			r.Put("/me/password", h.Member.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.Member.List)
				r.Delete("/{id}", h.Member.Delete)
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", h.Brand.List)
			r.Get("/{id}", h.Brand.GetByID)
			r.Get("/{id}/perfumes", h.Brand.ListPerfumes)

			r.Group(func(r chi.Router) {
				r.Use(rt.auth.Authenticate, middleware.RequireAdmin)
				r.Post("/", h.Brand.Create)
				r.Put("/{id}", h.Brand.Update)
				r.Delete("/{id}", h.Brand.Delete)
			})
		})

		r.Route("/perfumes", func(r chi.Router) {
			r.Get("/", h.Perfume.List)
			r.Get("/search", h.Perfume.Search)
			r.Get("/{id}", h.Perfume.GetByID)
			r.Get("/{id}/comments", h.Feedback.List)

			r.Group(func(r chi.Router) {
				r.Use(rt.auth.Authenticate, middleware.RequireAdmin)
				r.Post("/", h.Perfume.Create)
				r.Put("/{id}", h.Perfume.Update)
				r.Delete("/{id}", h.Perfume.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(rt.auth.Authenticate)
				r.Post("/{id}/comments", h.Feedback.Submit)
				r.Put("/{id}/comments/{commentId}", h.Feedback.Update)
				r.Delete("/{id}/comments/{commentId}", h.Feedback.Delete)
			})
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
