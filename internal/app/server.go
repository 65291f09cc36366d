package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/api/handlers"
	appMiddleware "github.com/linkstash-app/linkstash/internal/api/middlewares"
	"github.com/linkstash-app/linkstash/internal/config"
	"github.com/linkstash-app/linkstash/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users *services.UserService, bookmarks *services.BookmarkService,
	search *services.SearchService, insights *services.InsightService, log *zap.Logger) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarks, search, log)
	insightHandler := handlers.NewInsightHandler(insights)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Saves can sit in headless rendering plus transcription polling for a
	// while; the timeout has to outlast the worst pipeline run.
	r.Use(middleware.Timeout(3 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			protected.Post("/bookmarks", bookmarkHandler.Save)
			protected.Get("/bookmarks", bookmarkHandler.List)
			protected.Get("/bookmarks/search", bookmarkHandler.Search)
			protected.Get("/bookmarks/{id}", bookmarkHandler.Get)
			protected.Patch("/bookmarks/{id}", bookmarkHandler.Update)
			protected.Delete("/bookmarks/{id}", bookmarkHandler.Delete)

			protected.Get("/insights/clusters", insightHandler.Clusters)
			protected.Get("/insights/gaps", insightHandler.KnowledgeGaps)
			protected.Get("/insights/reading", insightHandler.SuggestedReading)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Fatal("server error", zap.Error(err))
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
