// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, aggregates, orchestrates
//	Repository (Data layer)  → reads/writes films, users and relationships
//
// The services only see the repository interfaces. Whether the data lives in
// maps or in SQL tables is decided once in the server wiring, and both
// backends give the services identical results.
//
// AGGREGATION:
// Ranking films by likes and intersecting friend lists happen here, over
// the plain List / GetByID / ListByIDs primitives. That keeps the rules in
// one place instead of once per backend.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

// DefaultPopularCount is used when the caller does not say how many films
// to rank.
const DefaultPopularCount = 10

type FilmService struct {
	films  repository.FilmRepository
	rules  *validation.Rules
	logger *slog.Logger
}

func NewFilmService(films repository.FilmRepository, rules *validation.Rules, logger *slog.Logger) *FilmService {
	return &FilmService{
		films:  films,
		rules:  rules,
		logger: logger,
	}
}

func (s *FilmService) List(ctx context.Context) ([]model.Film, error) {
	films, err := s.films.List(ctx)
	if err != nil {
		s.logger.Error("failed to list films", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing films: %w", err)
	}
	return films, nil
}

// GetByID returns apperror.ErrNotFound if the film doesn't exist.
func (s *FilmService) GetByID(ctx context.Context, id int64) (*model.Film, error) {
	return s.films.GetByID(ctx, id)
}

// Create validates film, fills in its defaults and stores it. On success
// film.ID is set and the stored version is returned.
func (s *FilmService) Create(ctx context.Context, film *model.Film) (*model.Film, error) {
	if err := s.rules.Film(film); err != nil {
		s.logger.Debug("film rejected", slog.String("name", film.Name), slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.films.Create(ctx, film); err != nil {
		s.logger.Error("failed to create film",
			slog.String("name", film.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating film: %w", err)
	}

	s.logger.Info("film created",
		slog.Int64("id", film.ID),
		slog.String("name", film.Name),
	)
	return film, nil
}

// Update replaces every field of an existing film except its likes.
func (s *FilmService) Update(ctx context.Context, film *model.Film) (*model.Film, error) {
	if err := s.rules.Film(film); err != nil {
		return nil, err
	}

	if err := s.films.Update(ctx, film); err != nil {
		if isDomain(err) {
			return nil, err
		}
		s.logger.Error("failed to update film",
			slog.Int64("id", film.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating film: %w", err)
	}

	s.logger.Info("film updated", slog.Int64("id", film.ID))
	return film, nil
}

func (s *FilmService) Delete(ctx context.Context, id int64) (model.Confirmation, error) {
	if err := s.films.Delete(ctx, id); err != nil {
		return model.Confirmation{}, err
	}

	s.logger.Info("film deleted", slog.Int64("id", id))
	return model.Confirmation{Info: fmt.Sprintf("film %d deleted", id)}, nil
}

func (s *FilmService) DeleteAll(ctx context.Context) (model.Confirmation, error) {
	if err := s.films.DeleteAll(ctx); err != nil {
		return model.Confirmation{}, err
	}

	s.logger.Info("all films deleted")
	return model.Confirmation{Info: "all films deleted"}, nil
}

// AddLike records userID's like and returns the film as it now stands.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) (*model.Film, error) {
	if err := s.films.AddLike(ctx, filmID, userID); err != nil {
		return nil, err
	}

	s.logger.Info("like added", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))
	return s.films.GetByID(ctx, filmID)
}

func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) (*model.Film, error) {
	if err := s.films.RemoveLike(ctx, filmID, userID); err != nil {
		return nil, err
	}

	s.logger.Info("like removed", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))
	return s.films.GetByID(ctx, filmID)
}

// Popular returns at most count films ordered by number of likes, most liked
// first. Films with the same number of likes come in ascending id order, so
// the result is the same on every call and on every backend.
func (s *FilmService) Popular(ctx context.Context, count int) ([]model.Film, error) {
	if count < 1 {
		return nil, apperror.ValidationFailed("count", fmt.Sprintf("count must be a positive number, got %d", count))
	}

	films, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(films, func(a, b model.Film) int {
		return cmp.Or(
			cmp.Compare(b.Popularity(), a.Popularity()),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if len(films) > count {
		films = films[:count]
	}
	return films, nil
}

// isDomain reports whether err is one of the expected outcomes (not found,
// invalid, duplicate) rather than an infrastructure failure worth logging.
func isDomain(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
