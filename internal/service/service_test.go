package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/repository/memory"
	"github.com/sakif/filmorate/internal/validation"
)

// =========================================================================
// TEST HELPERS
// =========================================================================
//
// Services are tested over the memory backend: it satisfies the same
// contract as the SQL store (see repository/repotest) and needs no setup.
// Failure paths use the small stubs at the bottom of this file.

var errDatabaseDown = errors.New("database is down")

type fixture struct {
	films *FilmService
	users *UserService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := memory.New(&repository.Counter{}, &repository.Counter{})
	t.Cleanup(func() { db.Close() })

	rules := newTestRules()
	logger := discardLogger()
	return fixture{
		films: NewFilmService(db.Films(), rules, logger),
		users: NewUserService(db.Users(), rules, logger),
	}
}

func newTestRules() *validation.Rules {
	return validation.New(validation.WithClock(func() time.Time {
		return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validFilm(name string) *model.Film {
	return &model.Film{
		Name:        name,
		Description: "a film called " + name,
		ReleaseDate: model.NewDate(2000, 1, 1),
		Duration:    100,
	}
}

func validUser(login string) *model.User {
	return &model.User{
		Email:    login + "@example.com",
		Login:    login,
		Birthday: model.NewDate(1990, 1, 1),
	}
}

func (f fixture) createFilms(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, n)
	for i := range ids {
		film, err := f.films.Create(context.Background(), validFilm("film"))
		require.NoError(t, err)
		ids[i] = film.ID
	}
	return ids
}

func (f fixture) createUsers(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, n)
	for i := range ids {
		user, err := f.users.Create(context.Background(), validUser("user"))
		require.NoError(t, err)
		ids[i] = user.ID
	}
	return ids
}

// =========================================================================
// FAILING STUBS
// =========================================================================

// brokenFilms fails every List call; other methods are never reached in the
// tests that use it.
type brokenFilms struct {
	repository.FilmRepository
}

func (brokenFilms) List(context.Context) ([]model.Film, error) {
	return nil, errDatabaseDown
}

func (brokenFilms) Create(context.Context, *model.Film) error {
	return errDatabaseDown
}

type brokenUsers struct {
	repository.UserRepository
	calls int
}

func (b *brokenUsers) AddFriend(context.Context, int64, int64) error {
	b.calls++
	return errDatabaseDown
}
