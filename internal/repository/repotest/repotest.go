// Package repotest holds the behaviour every repository backend must share.
//
// Backend packages call Run from their own tests with a factory that returns
// a fresh, empty store per subtest:
//
//	func TestContract(t *testing.T) {
//		repotest.Run(t, func(t *testing.T) (repository.FilmRepository, repository.UserRepository) {
//			db := newTestDB(t)
//			return db.Films(), db.Users()
//		})
//	}
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

// Factory returns empty film and user repositories sharing one store.
type Factory func(t *testing.T) (repository.FilmRepository, repository.UserRepository)

// Run executes the whole suite against the backend produced by newRepos.
func Run(t *testing.T, newRepos Factory) {
	suites := []struct {
		name string
		fn   func(t *testing.T, films repository.FilmRepository, users repository.UserRepository)
	}{
		{"FilmRoundTrip", testFilmRoundTrip},
		{"FilmReferenceFields", testFilmReferenceFields},
		{"FilmCreateIgnoresLikes", testFilmCreateIgnoresLikes},
		{"FilmUpdate", testFilmUpdate},
		{"FilmNotFound", testFilmNotFound},
		{"FilmListOrdered", testFilmListOrdered},
		{"FilmListByIDs", testFilmListByIDs},
		{"FilmDeleteAll", testFilmDeleteAll},
		{"FilmIDsNeverReused", testFilmIDsNeverReused},
		{"Likes", testLikes},
		{"LikeUnknownParties", testLikeUnknownParties},
		{"DeleteFilmDropsLikes", testDeleteFilmDropsLikes},
		{"UserRoundTrip", testUserRoundTrip},
		{"UserUpdate", testUserUpdate},
		{"UserNotFound", testUserNotFound},
		{"UserListByIDs", testUserListByIDs},
		{"UserDeleteAll", testUserDeleteAll},
		{"UserIDsNeverReused", testUserIDsNeverReused},
		{"FriendshipSymmetric", testFriendshipSymmetric},
		{"FriendshipErrors", testFriendshipErrors},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"DeleteAllUsersClearsLikes", testDeleteAllUsersClearsLikes},
	}

	for _, s := range suites {
		t.Run(s.name, func(t *testing.T) {
			films, users := newRepos(t)
			s.fn(t, films, users)
		})
	}
}

// NewFilm returns a valid film with the given name.
func NewFilm(name string) *model.Film {
	return &model.Film{
		Name:        name,
		Description: "description of " + name,
		ReleaseDate: model.NewDate(1999, 3, 31),
		Duration:    136,
		MPA:         &model.MPA{ID: 4},
		Genres:      []model.Genre{{ID: 6}, {ID: 4}},
	}
}

// NewUser returns a valid user with the given login.
func NewUser(login string) *model.User {
	return &model.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     "Name " + login,
		Birthday: model.NewDate(1990, 5, 17),
	}
}

func createFilm(t *testing.T, films repository.FilmRepository, name string) *model.Film {
	t.Helper()
	f := NewFilm(name)
	require.NoError(t, films.Create(context.Background(), f))
	return f
}

func createUser(t *testing.T, users repository.UserRepository, login string) *model.User {
	t.Helper()
	u := NewUser(login)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// =========================================================================
// FILMS
// =========================================================================

func testFilmRoundTrip(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()
	created := createFilm(t, films, "The Matrix")

	assert.Equal(t, int64(1), created.ID)

	got, err := films.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testFilmReferenceFields(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()

	f := NewFilm("Defaults")
	f.MPA = nil
	f.Genres = []model.Genre{{ID: 2}, {ID: 1}, {ID: 2}}
	require.NoError(t, films.Create(ctx, f))

	got, err := films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.MPA{ID: 1, Name: "G", MinAge: 0}, got.MPA)
	assert.Equal(t, []model.Genre{{ID: 1, Name: "Комедия"}, {ID: 2, Name: "Драма"}}, got.Genres)

	bare := NewFilm("No genres")
	bare.Genres = nil
	require.NoError(t, films.Create(ctx, bare))

	got, err = films.GetByID(ctx, bare.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Genres)
	assert.Empty(t, got.Genres)
	assert.NotNil(t, got.Likes)
}

func testFilmCreateIgnoresLikes(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	f := NewFilm("Likes smuggled in")
	f.Likes = []int64{1, 2, 3}
	require.NoError(t, films.Create(context.Background(), f))

	got, err := films.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Empty(t, f.Likes)
}

func testFilmUpdate(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	f := createFilm(t, films, "Before")
	u := createUser(t, users, "fan")
	require.NoError(t, films.AddLike(ctx, f.ID, u.ID))

	update := NewFilm("After")
	update.ID = f.ID
	update.Duration = 90
	update.Genres = []model.Genre{{ID: 3}}
	update.Likes = nil
	require.NoError(t, films.Update(ctx, update))
	assert.Equal(t, []int64{u.ID}, update.Likes, "update writes preserved likes back")

	got, err := films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, 90, got.Duration)
	assert.Equal(t, []model.Genre{{ID: 3, Name: "Мультфильм"}}, got.Genres)
	assert.Equal(t, []int64{u.ID}, got.Likes)
}

func testFilmNotFound(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()

	_, err := films.GetByID(ctx, 42)
	assertNotFound(t, err, "42")

	missing := NewFilm("Ghost")
	missing.ID = 43
	assertNotFound(t, films.Update(ctx, missing), "43")

	assertNotFound(t, films.Delete(ctx, 44), "44")
}

func testFilmListOrdered(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()

	empty, err := films.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"c", "a", "b"} {
		createFilm(t, films, name)
	}

	all, err := films.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, f := range all {
		assert.Equal(t, int64(i+1), f.ID)
	}
}

func testFilmListByIDs(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()
	for _, name := range []string{"one", "two", "three"} {
		createFilm(t, films, name)
	}

	got, err := films.ListByIDs(ctx, []int64{3, 99, 1})
	require.NoError(t, err)
	require.Len(t, got, 2, "unknown ids are skipped")
	assert.Equal(t, "one", got[0].Name)
	assert.Equal(t, "three", got[1].Name)

	none, err := films.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testFilmDeleteAll(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()

	assertNotFound(t, films.DeleteAll(ctx), "")

	createFilm(t, films, "one")
	createFilm(t, films, "two")
	require.NoError(t, films.DeleteAll(ctx))

	all, err := films.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assertNotFound(t, films.DeleteAll(ctx), "")
}

func testFilmIDsNeverReused(t *testing.T, films repository.FilmRepository, _ repository.UserRepository) {
	ctx := context.Background()
	first := createFilm(t, films, "first")
	require.NoError(t, films.Delete(ctx, first.ID))

	second := createFilm(t, films, "second")
	assert.Greater(t, second.ID, first.ID)

	require.NoError(t, films.DeleteAll(ctx))
	third := createFilm(t, films, "third")
	assert.Greater(t, third.ID, second.ID)
}

// =========================================================================
// LIKES
// =========================================================================

func testLikes(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	f := createFilm(t, films, "Liked")
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, films.AddLike(ctx, f.ID, bob.ID))
	require.NoError(t, films.AddLike(ctx, f.ID, alice.ID))

	err := films.AddLike(ctx, f.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	got, err := films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, got.Likes, "a repeated like is not counted twice")

	require.NoError(t, films.RemoveLike(ctx, f.ID, alice.ID))
	assert.ErrorIs(t, films.RemoveLike(ctx, f.ID, alice.ID), apperror.ErrNotFound)

	got, err = films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, got.Likes)
}

func testLikeUnknownParties(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	f := createFilm(t, films, "Lonely")
	u := createUser(t, users, "someone")

	assertNotFound(t, films.AddLike(ctx, 77, u.ID), "77")
	assertNotFound(t, films.AddLike(ctx, f.ID, 88), "88")
	assertNotFound(t, films.RemoveLike(ctx, 77, u.ID), "77")
	assertNotFound(t, films.RemoveLike(ctx, f.ID, 88), "88")
}

func testDeleteFilmDropsLikes(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	doomed := createFilm(t, films, "Doomed")
	kept := createFilm(t, films, "Kept")
	u := createUser(t, users, "viewer")

	require.NoError(t, films.AddLike(ctx, doomed.ID, u.ID))
	require.NoError(t, films.AddLike(ctx, kept.ID, u.ID))
	require.NoError(t, films.Delete(ctx, doomed.ID))

	_, err := films.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := films.GetByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{u.ID}, got.Likes)
}

// =========================================================================
// USERS
// =========================================================================

func testUserRoundTrip(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	created := createUser(t, users, "dolore")
	assert.Equal(t, int64(1), created.ID)
	assert.NotNil(t, created.Friends)

	got, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	smuggled := NewUser("smuggler")
	smuggled.Friends = []int64{1}
	require.NoError(t, users.Create(context.Background(), smuggled))
	assert.Empty(t, smuggled.Friends)
}

func testUserUpdate(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	require.NoError(t, users.AddFriend(ctx, a.ID, b.ID))

	update := NewUser("a2")
	update.ID = a.ID
	update.Name = "Renamed"
	require.NoError(t, users.Update(ctx, update))
	assert.Equal(t, []int64{b.ID}, update.Friends)

	got, err := users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Login)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, []int64{b.ID}, got.Friends)
}

func testUserNotFound(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()

	_, err := users.GetByID(ctx, 9999)
	assertNotFound(t, err, "9999")

	ghost := NewUser("ghost")
	ghost.ID = 12
	assertNotFound(t, users.Update(ctx, ghost), "12")
	assertNotFound(t, users.Delete(ctx, 13), "13")
}

func testUserListByIDs(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	for _, login := range []string{"u1", "u2", "u3"} {
		createUser(t, users, login)
	}

	got, err := users.ListByIDs(ctx, []int64{2, 3, 2, 5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testUserDeleteAll(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()

	assertNotFound(t, users.DeleteAll(ctx), "")

	createUser(t, users, "x")
	require.NoError(t, users.DeleteAll(ctx))

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assertNotFound(t, users.DeleteAll(ctx), "")
}

func testUserIDsNeverReused(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	first := createUser(t, users, "first")
	require.NoError(t, users.Delete(ctx, first.ID))

	second := createUser(t, users, "second")
	assert.Greater(t, second.ID, first.ID)
}

// =========================================================================
// FRIENDS
// =========================================================================

func testFriendshipSymmetric(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	c := createUser(t, users, "c")

	require.NoError(t, users.AddFriend(ctx, a.ID, c.ID))
	require.NoError(t, users.AddFriend(ctx, b.ID, a.ID))

	assertFriends(t, users, a.ID, b.ID, c.ID)
	assertFriends(t, users, b.ID, a.ID)
	assertFriends(t, users, c.ID, a.ID)

	require.NoError(t, users.RemoveFriend(ctx, c.ID, a.ID))
	assertFriends(t, users, a.ID, b.ID)
	assertFriends(t, users, c.ID)
}

func testFriendshipErrors(t *testing.T, _ repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	a := createUser(t, users, "a")
	b := createUser(t, users, "b")

	err := users.AddFriend(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.EqualError(t, err, fmt.Sprintf("user %d cannot befriend themselves", a.ID))
	err = users.RemoveFriend(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.EqualError(t, err, fmt.Sprintf("user %d cannot unfriend themselves", a.ID))
	assertNotFound(t, users.AddFriend(ctx, a.ID, 50), "50")
	assertNotFound(t, users.AddFriend(ctx, 51, a.ID), "51")
	assert.ErrorIs(t, users.RemoveFriend(ctx, a.ID, b.ID), apperror.ErrNotFound)

	require.NoError(t, users.AddFriend(ctx, a.ID, b.ID))
	assert.ErrorIs(t, users.AddFriend(ctx, a.ID, b.ID), apperror.ErrConflict)
	assert.ErrorIs(t, users.AddFriend(ctx, b.ID, a.ID), apperror.ErrConflict)

	assertFriends(t, users, a.ID, b.ID)
}

func testDeleteUserCascades(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	f := createFilm(t, films, "Shared")

	require.NoError(t, users.AddFriend(ctx, a.ID, b.ID))
	require.NoError(t, films.AddLike(ctx, f.ID, a.ID))
	require.NoError(t, films.AddLike(ctx, f.ID, b.ID))

	require.NoError(t, users.Delete(ctx, a.ID))

	assertFriends(t, users, b.ID)
	got, err := films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, got.Likes)
}

func testDeleteAllUsersClearsLikes(t *testing.T, films repository.FilmRepository, users repository.UserRepository) {
	ctx := context.Background()
	u := createUser(t, users, "u")
	f := createFilm(t, films, "f")
	require.NoError(t, films.AddLike(ctx, f.ID, u.ID))

	require.NoError(t, users.DeleteAll(ctx))

	got, err := films.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

// =========================================================================
// HELPERS
// =========================================================================

func assertFriends(t *testing.T, users repository.UserRepository, id int64, want ...int64) {
	t.Helper()
	u, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	if want == nil {
		want = []int64{}
	}
	assert.Equal(t, want, u.Friends, "friends of user %d", id)
}

// assertNotFound checks the error kind and, when id is non-empty, that the
// message names the id that failed to resolve.
func assertNotFound(t *testing.T, err error, id string) {
	t.Helper()
	require.ErrorIs(t, err, apperror.ErrNotFound)
	if id != "" {
		assert.Contains(t, err.Error(), id)
	}
}
