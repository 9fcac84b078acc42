package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/dverney/todo-api/internal/auth"
	"github.com/dverney/todo-api/internal/config"
	"github.com/dverney/todo-api/internal/handlers"
	mw "github.com/dverney/todo-api/internal/middleware"
	"github.com/dverney/todo-api/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repositories, handlers, and the middleware chain. All
// lifecycle-owning objects (DB handle, config) are constructed by the caller
// and threaded through here; nothing is ambient.
func newRouter(db *sql.DB, cfg config.Config) chi.Router {
	userRepo := repo.NewUserRepo(db)
	todoRepo := repo.NewTodoRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	tokens := auth.NewTokenService(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireMinutes)*time.Minute,
	)

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokens}
	todoHandler := &handlers.TodoHandler{Repo: todoRepo, Audit: auditRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(mw.Prometheus)
	r.Use(mw.SecurityHeaders(useTLS))
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))
	r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to the TODO API","version":"1.0.0","health":"/health"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Readiness: verifies the database is reachable.
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Public auth endpoints, rate limited per client IP.
	authLimiter := mw.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	// Protected endpoints.
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticator(tokens, userRepo))

		r.Get("/auth/me", authHandler.Me)
		r.Get("/audit", auditHandler.List)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Get("/stats", todoHandler.Stats)
			r.Get("/{id}", todoHandler.Get)
			r.Put("/{id}", todoHandler.Replace)
			r.Patch("/{id}", todoHandler.Update)
			r.Patch("/{id}/toggle", todoHandler.Toggle)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	return r
}
