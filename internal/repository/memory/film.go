package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

var _ repository.FilmRepository = (*FilmDB)(nil)

type FilmDB struct {
	db *DB
}

var filmOrder = byID(func(f model.Film) int64 { return f.ID })

func (s *FilmDB) List(_ context.Context) ([]model.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	films := make([]model.Film, 0, len(s.db.films))
	for _, f := range s.db.films {
		films = append(films, *f.Clone())
	}
	slices.SortFunc(films, filmOrder)
	return films, nil
}

func (s *FilmDB) GetByID(_ context.Context, id int64) (*model.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.films[id]
	if !ok {
		return nil, apperror.NotFound("film", id)
	}
	return f.Clone(), nil
}

func (s *FilmDB) ListByIDs(_ context.Context, ids []int64) ([]model.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	films := make([]model.Film, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if f, ok := s.db.films[id]; ok {
			films = append(films, *f.Clone())
		}
	}
	return films, nil
}

func (s *FilmDB) Create(_ context.Context, film *model.Film) error {
	repository.PrepareFilm(film)
	film.Likes = []int64{}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	film.ID = s.db.filmIDs.Next()
	s.db.films[film.ID] = film.Clone()
	return nil
}

func (s *FilmDB) Update(_ context.Context, film *model.Film) error {
	repository.PrepareFilm(film)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.films[film.ID]
	if !ok {
		return apperror.NotFound("film", film.ID)
	}
	film.Likes = slices.Clone(existing.Likes)
	s.db.films[film.ID] = film.Clone()
	return nil
}

func (s *FilmDB) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.films[id]; !ok {
		return apperror.NotFound("film", id)
	}
	delete(s.db.films, id)
	return nil
}

func (s *FilmDB) DeleteAll(_ context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if len(s.db.films) == 0 {
		return apperror.Missing("no films to delete")
	}
	clear(s.db.films)
	return nil
}

// AddLike records that userID likes filmID. A second like from the same user
// is rejected with a conflict rather than silently accepted.
func (s *FilmDB) AddLike(_ context.Context, filmID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	film, err := s.lookupPair(filmID, userID)
	if err != nil {
		return err
	}
	if film.LikedBy(userID) {
		return apperror.AlreadyExists(fmt.Sprintf("user %d already likes film %d", userID, filmID))
	}
	film.Likes = insertID(film.Likes, userID)
	return nil
}

func (s *FilmDB) RemoveLike(_ context.Context, filmID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	film, err := s.lookupPair(filmID, userID)
	if err != nil {
		return err
	}
	if !film.LikedBy(userID) {
		return apperror.Missing(fmt.Sprintf("user %d has not liked film %d", userID, filmID))
	}
	film.Likes = removeID(film.Likes, userID)
	return nil
}

// lookupPair resolves the stored film and checks the user exists. Callers
// must hold the write lock.
func (s *FilmDB) lookupPair(filmID, userID int64) (*model.Film, error) {
	film, ok := s.db.films[filmID]
	if !ok {
		return nil, apperror.NotFound("film", filmID)
	}
	if _, ok := s.db.users[userID]; !ok {
		return nil, apperror.NotFound("user", userID)
	}
	return film, nil
}
