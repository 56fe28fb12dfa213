package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/ragforge-labs/ragforge/internal/api/handler"
	apimw "github.com/ragforge-labs/ragforge/internal/api/middleware"
	"github.com/ragforge-labs/ragforge/internal/auth"
	"github.com/ragforge-labs/ragforge/internal/rag"
	"github.com/ragforge-labs/ragforge/internal/store"
)

type RouterDeps struct {
	Tokens        *auth.TokenService
	Service       *rag.Service
	MaxUploadSize int64
}

func NewRouter(logger *slog.Logger, s *store.Store, deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	authHandler := apihandler.NewAuthHandler(logger, s, deps.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Tokens, logger))

			r.Get("/auth/me", authHandler.Me)

			taskLookup := apihandler.NewTaskHandler(logger, deps.Service)
			r.Get("/tasks/{taskID}", taskLookup.Lookup)

			rags := apihandler.NewRagHandler(logger, deps.Service)
			r.Route("/rags", func(r chi.Router) {
				r.Get("/", rags.List)
				r.Post("/", rags.Create)

				r.Route("/{ragID}", func(r chi.Router) {
					r.Get("/", rags.Get)
					r.Delete("/", rags.Delete)

					upload := apihandler.NewUploadHandler(logger, deps.Service, deps.MaxUploadSize)
					r.Post("/upload", upload.Upload)
					r.Get("/upload-status", upload.Status)
					r.Post("/cycles/{cycleID}/approve", upload.Approve)

					tasks := apihandler.NewTaskHandler(logger, deps.Service)
					r.Route("/tasks", func(r chi.Router) {
						r.Get("/", tasks.List)
						r.Get("/{taskID}", tasks.Get)
					})

					members := apihandler.NewMemberHandler(logger, deps.Service)
					r.Route("/members", func(r chi.Router) {
						r.Get("/", members.List)
						r.Post("/", members.Add)
						r.Delete("/{userID}", members.Remove)
					})

					chat := apihandler.NewChatHandler(logger, deps.Service)
					r.Post("/chat", chat.Ask)
				})
			})
		})
	})

	return r
}
