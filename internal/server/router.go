package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/api"
	"github.com/campushub/campushub/internal/api/handlers"
	"github.com/campushub/campushub/internal/api/middleware"
)

type RouterConfig struct {
	TokenValidator    middleware.TokenValidator
	RateLimiter       *middleware.RateLimiter
	SearchHandler     *handlers.SearchHandler
	UniversityHandler *handlers.UniversityHandler
	UserHandler       *handlers.UserHandler
	PostHandler       *handlers.PostHandler
	NoteHandler       *handlers.NoteHandler
	ReviewHandler     *handlers.ReviewHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Search is open to anonymous callers; identity, when present, feeds
	// history attribution.
	r.Route("/search", func(r chi.Router) {
		r.Use(middleware.OptionalTokenAuth(cfg.TokenValidator))

		r.Get("/", cfg.SearchHandler.Global)
		r.Get("/universities", cfg.SearchHandler.Universities)
		r.Get("/users", cfg.SearchHandler.Users)
		r.Get("/posts", cfg.SearchHandler.Posts)
		r.Get("/notes", cfg.SearchHandler.Notes)
		r.Get("/reviews", cfg.SearchHandler.Reviews)
		r.Get("/suggestions", cfg.SearchHandler.Suggestions)
		r.Get("/popular", cfg.SearchHandler.Popular)

		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(cfg.TokenValidator))
			r.Get("/recent", cfg.SearchHandler.Recent)
			r.Delete("/recent", cfg.SearchHandler.ClearRecent)
		})
	})

	r.Route("/universities", func(r chi.Router) {
		r.Get("/", cfg.UniversityHandler.List)
		r.Get("/{id}", cfg.UniversityHandler.Get)
		r.Get("/{id}/reviews", cfg.ReviewHandler.ListByUniversity)
	})

	r.Get("/users/{id}", cfg.UserHandler.Get)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", cfg.PostHandler.List)
		r.Get("/trending", cfg.PostHandler.Trending)
		r.Get("/{id}", cfg.PostHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(cfg.TokenValidator))
			r.Post("/", cfg.PostHandler.Create)
		})
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", cfg.NoteHandler.List)
		r.Get("/{id}", cfg.NoteHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(cfg.TokenValidator))
			r.Post("/", cfg.NoteHandler.Create)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.TokenValidator))
		r.Post("/reviews", cfg.ReviewHandler.Create)
	})

	return r
}
