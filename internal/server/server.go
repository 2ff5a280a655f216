// Package server is the composition root: it opens the stores, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
//	config.Config → store (sqlite | postgres), list cache (redis, optional)
//	             → SnippetService, AuthService
//	             → handlers → chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippy/internal/auth"
	"github.com/sakif/snippy/internal/cache"
	"github.com/sakif/snippy/internal/config"
	"github.com/sakif/snippy/internal/handler"
	"github.com/sakif/snippy/internal/metrics"
	"github.com/sakif/snippy/internal/middleware"
	"github.com/sakif/snippy/internal/repository"
	"github.com/sakif/snippy/internal/repository/postgres"
	sqliteRepo "github.com/sakif/snippy/internal/repository/sqlite"
	"github.com/sakif/snippy/internal/service"
)

// Server owns the router and every resource that must be closed on
// shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	snippets repository.SnippetRepository
	users    repository.UserRepository
	store    repository.Pinger
	cache    *cache.Cache // nil when REDIS_URL is unset or unreachable
	counters *metrics.InMemoryRecorder
	closers  []func() error
}

// New opens the stores and wires the router. On error everything opened so
// far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	if err := s.openStore(ctx); err != nil {
		return nil, err
	}
	s.openCache(ctx)

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context) error {
	if s.config.UsePostgres() {
		repo, err := postgres.New(ctx, s.config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("opening postgres: %w", err)
		}
		s.snippets, s.users, s.store = repo, repo.Users(), repo
		s.closers = append(s.closers, repo.Close)
		s.logger.Info("connected to postgres")
		return nil
	}

	if s.config.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.config.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(s.config.DBPath)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	s.snippets, s.users, s.store = db, db.Users(), db
	s.closers = append(s.closers, db.Close)
	s.logger.Info("opened sqlite database", slog.String("path", s.config.DBPath))
	return nil
}

// openCache connects the list cache. The cache only saves reads, so an
// unreachable Redis is logged and the server runs without it.
func (s *Server) openCache(ctx context.Context) {
	if s.config.RedisURL == "" {
		return
	}
	c, err := cache.New(ctx, s.config.RedisURL, s.config.ListCacheTTL)
	if err != nil {
		s.logger.Warn("list cache disabled: redis unavailable", slog.String("error", err.Error()))
		return
	}
	s.cache = c
	s.closers = append(s.closers, c.Close)
	s.logger.Info("connected to redis list cache", slog.Duration("ttl", s.config.ListCacheTTL))
}

// setupRoutes mounts:
//
//	GET  /healthz, /readyz, /metrics
//	GET  /auth/login, /auth/register        pages, signed-in callers go home
//	POST /auth/login, /auth/register, /auth/logout
//	GET  /auth/github/login, /auth/github/callback   when configured
//	GET  /api/languages
//	     /api/me, /api/snippets[/{id}]      bearer or cookie, 401 otherwise
//	GET  /, /snippets/new, /snippets/{id}/edit       pages, login redirect
//	POST /snippets, /snippets/{id}/delete
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	if s.config.MetricsEnabled {
		s.counters = metrics.NewInMemory()
		recorder = s.counters
	}

	var listCache service.ListCache
	var cacheCheck handler.HealthChecker
	if s.cache != nil {
		listCache, cacheCheck = s.cache, s.cache
	}

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallback())
	}

	snippetService := service.NewSnippetService(s.snippets, listCache, recorder, s.logger)
	authService := service.NewAuthService(s.users, tokens, auth.NewPasswordService(), s.logger)

	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	authHandler := handler.NewAuthHandler(authService, tokens, github, !s.config.IsDevelopment(), s.logger)
	healthHandler := handler.NewHealthHandler(
		handler.Dependency{Name: "store", Checker: s.store},
		handler.Dependency{Name: "cache", Checker: cacheCheck},
	)
	var snapshots metrics.Snapshotter
	if s.counters != nil {
		snapshots = s.counters
	}
	metaHandler := handler.NewMetaHandler(snapshots)
	pageHandler, err := handler.NewPageHandler(snippetService, authHandler.GitHubEnabled(), s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(middleware.Security(s.config.IsDevelopment()))
	r.Use(middleware.MaxBodySize(s.config.MaxRequestBodySize))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metaHandler.HandleMetrics)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Use(middleware.RedirectSignedIn("/"))
			r.Get("/login", pageHandler.HandleLoginPage)
			r.Get("/register", pageHandler.HandleRegisterPage)
		})
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/logout", authHandler.HandleLogout)
		if authHandler.GitHubEnabled() {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", metaHandler.HandleLanguages)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Get("/snippets", snippetHandler.HandleList)
			r.Post("/snippets", snippetHandler.HandleUpsert)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Use(middleware.RequireSession)
		r.Get("/", pageHandler.HandleHome)
		r.Get("/snippets/new", pageHandler.HandleNewSnippet)
		r.Get("/snippets/{id}/edit", pageHandler.HandleEditSnippet)
		r.Post("/snippets", pageHandler.HandleSaveSnippet)
		r.Post("/snippets/{id}/delete", pageHandler.HandleDeleteSnippet)
	})

	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ShutdownTimeout and closes the stores.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.config.BaseURL),
			slog.Bool("github", s.config.GitHubEnabled()),
			slog.Bool("list_cache", s.cache != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close releases the stores in reverse open order. Safe to call twice.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
