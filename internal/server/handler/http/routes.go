package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/evolution-crm/evoadmin/internal/middleware"
)

// NewRouter constructs the HTTP handler that serves the admin API.
// It applies JSON content-type enforcement, request logging, and
// bearer-token authentication, and mounts the auth, user, and locale
// endpoints under /api. Only /api/users/login is reachable without a
// token.
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	localeHandler *LocaleHandler,
	tokens middleware.TokenValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Enforce bearer-token authentication
	r.Use(middleware.BearerAuth(tokens))

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/login", authHandler.Login)
		r.Post("/users/logout", authHandler.Logout)
		r.Get("/users/me", authHandler.Me)
		r.Post("/auth/change-password", authHandler.ChangePassword)

		r.Route("/admin/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Put("/{id}", userHandler.Update)
			r.Patch("/{id}/status", userHandler.SetStatus)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/locales", func(r chi.Router) {
			r.Get("/", localeHandler.List)
			r.Post("/", localeHandler.Create)
			r.Put("/{id}", localeHandler.Update)
			r.Patch("/{id}/status", localeHandler.SetStatus)
			r.Delete("/{id}", localeHandler.Delete)
			r.Post("/{id}/admin", localeHandler.AssignAdmin)
			r.Post("/{id}/unassign", localeHandler.Unassign)
			r.Get("/{id}/users", localeHandler.AssignedUsers)
		})
	})

	return r
}
