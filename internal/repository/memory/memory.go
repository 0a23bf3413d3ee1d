// Package memory implements the repository interfaces on plain Go maps.
//
// One RWMutex guards both maps. Relationship writes touch two entities (a
// film and a user, or two users) and cascading deletes touch every entity,
// so a single coarse lock is the simplest way to keep each operation atomic.
//
// Values are cloned on the way in and on the way out: callers never hold a
// pointer into the store.
package memory

import (
	"cmp"
	"slices"
	"sync"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

// DB is the shared state behind FilmDB and UserDB.
type DB struct {
	mu    sync.RWMutex
	films map[int64]*model.Film
	users map[int64]*model.User

	filmIDs repository.Sequence
	userIDs repository.Sequence
}

// New creates an empty store. Each entity type draws ids from its own
// sequence.
func New(filmIDs, userIDs repository.Sequence) *DB {
	return &DB{
		films:   make(map[int64]*model.Film),
		users:   make(map[int64]*model.User),
		filmIDs: filmIDs,
		userIDs: userIDs,
	}
}

// Films returns the film repository view of the store.
func (db *DB) Films() *FilmDB {
	return &FilmDB{db: db}
}

// Users returns the user repository view of the store.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// Close exists so the server can treat every backend alike.
func (db *DB) Close() error {
	return nil
}

// insertID adds id to a sorted id set.
func insertID(ids []int64, id int64) []int64 {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

// removeID drops id from a sorted id set.
func removeID(ids []int64, id int64) []int64 {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func byID[T any](id func(T) int64) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(id(a), id(b)) }
}
