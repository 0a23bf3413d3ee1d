// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It decides:
// - Which storage backend the repositories live on
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → openStorage → FilmRepository / UserRepository
//	              → FilmService / UserService / CatalogService
//	              → FilmHandler / UserHandler / CatalogHandler → routes
//
// This is the "composition root": all dependencies are wired here, and
// nothing below this package knows which backend was chosen.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/filmorate/internal/config"
	"github.com/sakif/filmorate/internal/handler"
	"github.com/sakif/filmorate/internal/middleware"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/repository/memory"
	"github.com/sakif/filmorate/internal/repository/sqlstore"
	"github.com/sakif/filmorate/internal/service"
	"github.com/sakif/filmorate/internal/validation"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the storage connection. Start closes it on the way out so
// a SQLite file is flushed and unlocked.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  storage
}

// storage is the pair of repositories a backend provides, plus the handle
// that releases it.
type storage struct {
	films repository.FilmRepository
	users repository.UserRepository
	io.Closer
}

// New opens the configured storage backend and wires every layer on top of it.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes()
	return s, nil
}

func openStorage(cfg config.Config) (storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		db := memory.New(&repository.Counter{}, &repository.Counter{})
		return storage{films: db.Films(), users: db.Users(), Closer: db}, nil

	case config.StorageSQLite:
		// Create the data directory on first run (like `mkdir -p`).
		if dir := filepath.Dir(cfg.DBPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return storage{}, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqlstore.New(sqlstore.DriverSQLite, cfg.DBPath)
		if err != nil {
			return storage{}, err
		}
		return storage{films: db.Films(), users: db.Users(), Closer: db}, nil

	case config.StoragePostgres:
		db, err := sqlstore.New(sqlstore.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return storage{}, err
		}
		return storage{films: db.Films(), users: db.Users(), Closer: db}, nil
	}
	return storage{}, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /films                              → list films
//	POST   /films                              → create film
//	PUT    /films                              → update film (id in body)
//	DELETE /films                              → delete all films
//	GET    /films/popular?count=N              → most liked films
//	GET    /films/{id}                         → get film
//	DELETE /films/{id}                         → delete film
//	PUT    /films/{id}/like/{userId}           → like
//	DELETE /films/{id}/like/{userId}           → unlike
//	GET    /users ... (same CRUD shape as films)
//	GET    /users/{id}/friends                 → friend list
//	PUT    /users/{id}/friends/{friendId}      → befriend
//	DELETE /users/{id}/friends/{friendId}      → unfriend
//	GET    /users/{id}/friends/common/{otherId} → mutual friends
//	GET    /genres, /genres/{id}, /mpa, /mpa/{id}
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger can report the id; Recoverer sits
// inside the logger so a panic is logged as the 500 it becomes.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	rules := validation.New(validation.WithMinDescription(s.config.DescriptionMinLength))

	films := handler.NewFilmHandler(service.NewFilmService(s.store.films, rules, s.logger), s.logger)
	users := handler.NewUserHandler(service.NewUserService(s.store.users, rules, s.logger), s.logger)
	catalog := handler.NewCatalogHandler(service.NewCatalogService())

	s.router.Route("/films", func(r chi.Router) {
		r.Get("/", films.HandleList)
		r.Post("/", films.HandleCreate)
		r.Put("/", films.HandleUpdate)
		r.Delete("/", films.HandleDeleteAll)
		r.Get("/popular", films.HandlePopular)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", films.HandleGetByID)
			r.Delete("/", films.HandleDelete)
			r.Put("/like/{userId}", films.HandleAddLike)
			r.Delete("/like/{userId}", films.HandleRemoveLike)
		})
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", users.HandleList)
		r.Post("/", users.HandleCreate)
		r.Put("/", users.HandleUpdate)
		r.Delete("/", users.HandleDeleteAll)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", users.HandleGetByID)
			r.Delete("/", users.HandleDelete)
			r.Get("/friends", users.HandleFriends)
			r.Put("/friends/{friendId}", users.HandleAddFriend)
			r.Delete("/friends/{friendId}", users.HandleRemoveFriend)
			r.Get("/friends/common/{otherId}", users.HandleCommonFriends)
		})
	})

	s.router.Get("/genres", catalog.HandleGenres)
	s.router.Get("/genres/{id}", catalog.HandleGenre)
	s.router.Get("/mpa", catalog.HandleRatings)
	s.router.Get("/mpa/{id}", catalog.HandleRating)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the storage backend.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start starts the HTTP server and handles graceful shutdown:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the storage backend
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.Storage),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
