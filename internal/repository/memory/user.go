package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

type UserDB struct {
	db *DB
}

var userOrder = byID(func(u model.User) int64 { return u.ID })

func (s *UserDB) List(_ context.Context) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]model.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		users = append(users, *u.Clone())
	}
	slices.SortFunc(users, userOrder)
	return users, nil
}

func (s *UserDB) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u.Clone(), nil
}

func (s *UserDB) ListByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]model.User, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if u, ok := s.db.users[id]; ok {
			users = append(users, *u.Clone())
		}
	}
	return users, nil
}

func (s *UserDB) Create(_ context.Context, user *model.User) error {
	user.Friends = []int64{}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user.ID = s.db.userIDs.Next()
	s.db.users[user.ID] = user.Clone()
	return nil
}

func (s *UserDB) Update(_ context.Context, user *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.Friends = slices.Clone(existing.Friends)
	s.db.users[user.ID] = user.Clone()
	return nil
}

// Delete removes the user and everything that points at them: their
// friendships on the other side and their likes on films.
func (s *UserDB) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	for _, friendID := range user.Friends {
		if friend, ok := s.db.users[friendID]; ok {
			friend.Friends = removeID(friend.Friends, id)
		}
	}
	for _, film := range s.db.films {
		film.Likes = removeID(film.Likes, id)
	}
	delete(s.db.users, id)
	return nil
}

func (s *UserDB) DeleteAll(_ context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if len(s.db.users) == 0 {
		return apperror.Missing("no users to delete")
	}
	clear(s.db.users)
	for _, film := range s.db.films {
		film.Likes = []int64{}
	}
	return nil
}

// AddFriend links both users to each other under one lock hold, so no reader
// ever sees a one-sided friendship.
func (s *UserDB) AddFriend(_ context.Context, userID, friendID int64) error {
	if err := repository.CheckNotSelf(repository.Befriend, userID, friendID); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, friend, err := s.lookupPair(userID, friendID)
	if err != nil {
		return err
	}
	if user.IsFriend(friendID) {
		return apperror.AlreadyExists(fmt.Sprintf("users %d and %d are already friends", userID, friendID))
	}
	user.Friends = insertID(user.Friends, friendID)
	friend.Friends = insertID(friend.Friends, userID)
	return nil
}

func (s *UserDB) RemoveFriend(_ context.Context, userID, friendID int64) error {
	if err := repository.CheckNotSelf(repository.Unfriend, userID, friendID); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, friend, err := s.lookupPair(userID, friendID)
	if err != nil {
		return err
	}
	if !user.IsFriend(friendID) {
		return apperror.Missing(fmt.Sprintf("users %d and %d are not friends", userID, friendID))
	}
	user.Friends = removeID(user.Friends, friendID)
	friend.Friends = removeID(friend.Friends, userID)
	return nil
}

func (s *UserDB) lookupPair(userID, friendID int64) (*model.User, *model.User, error) {
	user, ok := s.db.users[userID]
	if !ok {
		return nil, nil, apperror.NotFound("user", userID)
	}
	friend, ok := s.db.users[friendID]
	if !ok {
		return nil, nil, apperror.NotFound("user", friendID)
	}
	return user, friend, nil
}
