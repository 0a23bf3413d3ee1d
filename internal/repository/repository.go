// Package repository declares the storage contract shared by every backend.
//
// Two implementations exist: memory (maps guarded by a lock) and sqlstore
// (relational tables through sqlx). Both must be indistinguishable to the
// service layer: same ordering, same error kinds, same cascade behaviour.
// The contract suite in repository/repotest runs against each of them.
//
// ERROR CONTRACT:
//   - Missing entity          → apperror.NotFound naming the id
//   - Delete on empty table   → apperror.Missing (NotFound kind)
//   - Duplicate like / friend → apperror.AlreadyExists
//   - Anything else           → wrapped infrastructure error
package repository

import (
	"context"
	"fmt"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

// FilmRepository stores films and their likes.
//
// List and ListByIDs return films ascending by id. Every returned film has
// its genres, likes and rating populated.
type FilmRepository interface {
	List(ctx context.Context) ([]model.Film, error)
	GetByID(ctx context.Context, id int64) (*model.Film, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Film, error)
	// Create assigns film.ID. Likes passed in are ignored; likes are only
	// ever added through AddLike.
	Create(ctx context.Context, film *model.Film) error
	// Update replaces the film's fields and genres. Likes are preserved and
	// written back into film.
	Update(ctx context.Context, film *model.Film) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error

	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
}

// UserRepository stores users and the friendship graph.
//
// Friendship is symmetric: AddFriend(a, b) makes b a friend of a and a a
// friend of b in one step, RemoveFriend undoes both.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	// Create assigns user.ID. Friends passed in are ignored.
	Create(ctx context.Context, user *model.User) error
	// Update replaces the user's profile fields. Friends are preserved and
	// written back into user.
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user together with their likes and friendships.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error

	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
}

// Friendship verbs used in self-friendship errors.
const (
	Befriend = "befriend"
	Unfriend = "unfriend"
)

// CheckNotSelf rejects a friendship operation naming the same user twice.
func CheckNotSelf(verb string, userID, friendID int64) error {
	if userID == friendID {
		return apperror.ValidationFailed("friendId", fmt.Sprintf("user %d cannot %s themselves", userID, verb))
	}
	return nil
}
