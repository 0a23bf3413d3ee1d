package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/repository/repotest"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db := New(&repository.Counter{}, &repository.Counter{})
	t.Cleanup(func() { db.Close() })
	return db
}

func TestContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) (repository.FilmRepository, repository.UserRepository) {
		db := newTestDB(t)
		return db.Films(), db.Users()
	})
}

// Returned values are copies: mutating them must not reach the store.
func TestGetByIDReturnsCopy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	film := repotest.NewFilm("Original")
	require.NoError(t, db.Films().Create(ctx, film))

	got, err := db.Films().GetByID(ctx, film.ID)
	require.NoError(t, err)
	got.Name = "Changed"
	got.Genres[0].Name = "Changed"
	got.Likes = append(got.Likes, 99)

	again, err := db.Films().GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Name)
	assert.Equal(t, "Триллер", again.Genres[0].Name)
	assert.Empty(t, again.Likes)

	// The caller's struct passed to Create is not aliased either.
	film.Name = "Mutated after create"
	again, err = db.Films().GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Name)
}

func TestSequencesResetOnlyExplicitly(t *testing.T) {
	films, users := &repository.Counter{}, &repotest.Counter{}
	db := New(films, users)
	ctx := context.Background()

	first := repotest.NewUser("first")
	require.NoError(t, db.Users().Create(ctx, first))
	require.NoError(t, db.Users().DeleteAll(ctx))

	users.Reset()
	again := repotest.NewUser("again")
	require.NoError(t, db.Users().Create(ctx, again))
	assert.Equal(t, first.ID, again.ID)
}

// Concurrent likes and friendships on the same entities must neither race
// nor lose updates.
func TestConcurrentRelationshipWrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	film := repotest.NewFilm("Crowded")
	require.NoError(t, db.Films().Create(ctx, film))
	hub := repotest.NewUser("hub")
	require.NoError(t, db.Users().Create(ctx, hub))

	const n = 50
	ids := make([]int64, n)
	for i := range ids {
		u := repotest.NewUser("user")
		require.NoError(t, db.Users().Create(ctx, u))
		ids[i] = u.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Films().AddLike(ctx, film.ID, id))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Users().AddFriend(ctx, hub.ID, id))
		}()
	}
	wg.Wait()

	got, err := db.Films().GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, n)
	assert.IsIncreasing(t, got.Likes)

	h, err := db.Users().GetByID(ctx, hub.ID)
	require.NoError(t, err)
	assert.Equal(t, ids, h.Friends)
}
