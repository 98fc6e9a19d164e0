// Package router sets up all HTTP routes and middleware chains for the
// TaskDeck API. Routes are organized into a public auth group with tight
// rate limiting and an authenticated /api group.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taskdeck/internal/handlers"
	"taskdeck/internal/middleware"
	"taskdeck/internal/session"
	"taskdeck/internal/token"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(tokens *token.Manager, sessions *session.Store, auth *handlers.Auth, tasks *handlers.Tasks, users *handlers.Users, tickets *handlers.Tickets, workLogs *handlers.WorkLogs) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(tokens, sessions))
	r.Use(middleware.Logger)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Auth endpoints. Credential endpoints get a tight rate limit to slow
	// down guessing.
	r.Route("/auth", func(r chi.Router) {
		loginLimiter := middleware.NewRateLimiter(10, time.Minute)
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/login", auth.Login)
			r.Post("/register", auth.Register)
		})

		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
			r.Get("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/enable", auth.TwoFAEnable)
			r.Post("/2fa/disable", auth.TwoFADisable)
		})
	})

	// Everything under /api requires a valid session.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Get("/search", tasks.Search)
			r.Get("/stats", tasks.Stats)
			r.Get("/{id}", tasks.Get)
			r.Post("/", tasks.Create)
			r.Put("/{id}", tasks.Update)
			r.Delete("/{id}", tasks.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			// Profile updates are admin-or-self; the handler enforces it.
			r.Put("/{id}", users.Update)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", users.List)
				r.Get("/search", users.Search)
				r.Get("/stats", users.Stats)
				r.Get("/{id}", users.Get)
				r.Post("/", users.Create)
				r.Delete("/{id}", users.Delete)
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", tickets.List)
			r.Get("/{id}", tickets.Get)
			r.Post("/", tickets.Create)
			r.Put("/{id}", tickets.Update)
			r.Delete("/{id}", tickets.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/{id}/approve", tickets.Approve)
				r.Post("/{id}/reject", tickets.Reject)
			})
		})

		r.Route("/worklogs", func(r chi.Router) {
			r.Get("/", workLogs.List)
			r.Get("/{id}", workLogs.Get)
			r.Post("/", workLogs.Create)
			r.Put("/{id}", workLogs.Update)
			r.Delete("/{id}", workLogs.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
