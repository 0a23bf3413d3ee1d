package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

type UserDB struct {
	db *DB
}

const userColumns = `id, email, login, name, birthday`

func scanUser(row scanner) (model.User, error) {
	var (
		u        model.User
		birthday string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Login, &u.Name, &birthday); err != nil {
		return model.User{}, err
	}

	date, err := model.ParseDate(birthday)
	if err != nil {
		return model.User{}, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Birthday = date
	u.Friends = []int64{}
	return u, nil
}

func loadUsers(ctx context.Context, q sqlx.ExtContext, where string, args ...any) ([]model.User, error) {
	rows, err := q.QueryContext(ctx, q.Rebind(`SELECT `+userColumns+` FROM users `+where+` ORDER BY id`), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: selecting users: %w", err)
	}

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: scanning user: %w", err)
		}
		users = append(users, u)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: iterating users: %w", err)
	}

	if len(users) == 0 {
		return users, nil
	}

	index := make(map[int64]*model.User, len(users))
	ids := make([]int64, len(users))
	for i := range users {
		index[users[i].ID] = &users[i]
		ids[i] = users[i].ID
	}

	err = eachPair(ctx, q, `SELECT user_id, friend_id FROM friendships WHERE user_id IN (?) ORDER BY user_id, friend_id`, ids,
		func(userID, friendID int64) {
			u := index[userID]
			u.Friends = append(u.Friends, friendID)
		})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading friends: %w", err)
	}
	return users, nil
}

func (s *UserDB) List(ctx context.Context) ([]model.User, error) {
	return loadUsers(ctx, s.db.conn, "")
}

func (s *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	users, err := loadUsers(ctx, s.db.conn, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return &users[0], nil
}

func (s *UserDB) ListByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	where, args, err := sqlx.In("WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: expanding user ids: %w", err)
	}
	return loadUsers(ctx, s.db.conn, where, args...)
}

func (s *UserDB) Create(ctx context.Context, user *model.User) error {
	var id int64
	err := s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, userSequence); err != nil {
			return err
		}

		if _, err := exec(ctx, tx,
			`INSERT INTO users (id, email, login, name, birthday) VALUES (?, ?, ?, ?, ?)`,
			id, user.Email, user.Login, user.Name, user.Birthday.String(),
		); err != nil {
			return fmt.Errorf("sqlstore: inserting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.ID = id
	user.Friends = []int64{}
	return nil
}

func (s *UserDB) Update(ctx context.Context, user *model.User) error {
	var friends []int64
	err := s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx,
			`UPDATE users SET email = ?, login = ?, name = ?, birthday = ? WHERE id = ?`,
			user.Email, user.Login, user.Name, user.Birthday.String(), user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: updating user %d: %w", user.ID, err)
		}
		if n == 0 {
			return apperror.NotFound("user", user.ID)
		}

		friends = []int64{}
		if err := tx.SelectContext(ctx, &friends,
			tx.Rebind(`SELECT friend_id FROM friendships WHERE user_id = ? ORDER BY friend_id`), user.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: loading friends of user %d: %w", user.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.Friends = friends
	return nil
}

// Delete removes the user with their likes and both directions of every
// friendship in one transaction.
func (s *UserDB) Delete(ctx context.Context, id int64) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx, `DELETE FROM film_likes WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("sqlstore: deleting likes of user %d: %w", id, err)
		}
		if _, err := exec(ctx, tx, `DELETE FROM friendships WHERE user_id = ? OR friend_id = ?`, id, id); err != nil {
			return fmt.Errorf("sqlstore: deleting friendships of user %d: %w", id, err)
		}

		n, err := exec(ctx, tx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting user %d: %w", id, err)
		}
		if n == 0 {
			return apperror.NotFound("user", id)
		}
		return nil
	})
}

func (s *UserDB) DeleteAll(ctx context.Context) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{`DELETE FROM film_likes`, `DELETE FROM friendships`} {
			if _, err := exec(ctx, tx, stmt); err != nil {
				return fmt.Errorf("sqlstore: deleting users: %w", err)
			}
		}

		n, err := exec(ctx, tx, `DELETE FROM users`)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting users: %w", err)
		}
		if n == 0 {
			return apperror.Missing("no users to delete")
		}
		return nil
	})
}

// AddFriend writes both directions of the friendship. Rows are marked
// confirmed; nothing reads the flag yet.
func (s *UserDB) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := repository.CheckNotSelf(repository.Befriend, userID, friendID); err != nil {
		return err
	}

	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkUsers(ctx, tx, userID, friendID); err != nil {
			return err
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			tx.Rebind(`SELECT COUNT(*) FROM friendships WHERE user_id = ? AND friend_id = ?`), userID, friendID,
		); err != nil {
			return fmt.Errorf("sqlstore: checking friendship: %w", err)
		}
		if count > 0 {
			return apperror.AlreadyExists(fmt.Sprintf("users %d and %d are already friends", userID, friendID))
		}

		for _, edge := range [][2]int64{{userID, friendID}, {friendID, userID}} {
			if _, err := exec(ctx, tx,
				`INSERT INTO friendships (user_id, friend_id, confirmed) VALUES (?, ?, ?)`, edge[0], edge[1], true,
			); err != nil {
				return fmt.Errorf("sqlstore: inserting friendship: %w", err)
			}
		}
		return nil
	})
}

func (s *UserDB) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := repository.CheckNotSelf(repository.Unfriend, userID, friendID); err != nil {
		return err
	}

	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkUsers(ctx, tx, userID, friendID); err != nil {
			return err
		}

		n, err := exec(ctx, tx,
			`DELETE FROM friendships WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
			userID, friendID, friendID, userID,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting friendship: %w", err)
		}
		if n == 0 {
			return apperror.Missing(fmt.Sprintf("users %d and %d are not friends", userID, friendID))
		}
		return nil
	})
}

func checkUsers(ctx context.Context, q sqlx.ExtContext, ids ...int64) error {
	for _, id := range ids {
		ok, err := exists(ctx, q, "users", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("user", id)
		}
	}
	return nil
}
