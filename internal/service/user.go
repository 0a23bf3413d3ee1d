package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

type UserService struct {
	users  repository.UserRepository
	rules  *validation.Rules
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, rules *validation.Rules, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		rules:  rules,
		logger: logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create validates user and stores it. A blank name is replaced by the login
// before anything is written.
func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.rules.User(user); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("login", user.Login),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("login", user.Login),
	)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.rules.User(user); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		if isDomain(err) {
			return nil, err
		}
		s.logger.Error("failed to update user",
			slog.Int64("id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.Int64("id", user.ID))
	return user, nil
}

// Delete removes the user along with their likes and friendships.
func (s *UserService) Delete(ctx context.Context, id int64) (model.Confirmation, error) {
	if err := s.users.Delete(ctx, id); err != nil {
		return model.Confirmation{}, err
	}

	s.logger.Info("user deleted", slog.Int64("id", id))
	return model.Confirmation{Info: fmt.Sprintf("user %d deleted", id)}, nil
}

func (s *UserService) DeleteAll(ctx context.Context) (model.Confirmation, error) {
	if err := s.users.DeleteAll(ctx); err != nil {
		return model.Confirmation{}, err
	}

	s.logger.Info("all users deleted")
	return model.Confirmation{Info: "all users deleted"}, nil
}

// AddFriend makes the two users friends of each other and returns userID's
// updated profile.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) (*model.User, error) {
	if err := repository.CheckNotSelf(repository.Befriend, userID, friendID); err != nil {
		return nil, err
	}
	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}

	s.logger.Info("friendship added", slog.Int64("user_id", userID), slog.Int64("friend_id", friendID))
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) (*model.User, error) {
	if err := repository.CheckNotSelf(repository.Unfriend, userID, friendID); err != nil {
		return nil, err
	}
	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return nil, err
	}

	s.logger.Info("friendship removed", slog.Int64("user_id", userID), slog.Int64("friend_id", friendID))
	return s.users.GetByID(ctx, userID)
}

// Friends resolves the user's friend ids to full users, ascending by id.
func (s *UserService) Friends(ctx context.Context, id int64) ([]model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user.Friends)
}

// CommonFriends returns the users who are friends with both id and otherID,
// ascending by id. The result does not depend on argument order.
func (s *UserService) CommonFriends(ctx context.Context, id, otherID int64) ([]model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	theirs := make(map[int64]struct{}, len(other.Friends))
	for _, fid := range other.Friends {
		theirs[fid] = struct{}{}
	}

	shared := []int64{}
	for _, fid := range user.Friends {
		if _, ok := theirs[fid]; ok {
			shared = append(shared, fid)
		}
	}
	return s.resolve(ctx, shared)
}

func (s *UserService) resolve(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to resolve users", slog.Int("count", len(ids)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("resolving users: %w", err)
	}
	return users, nil
}
