package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

var _ repository.FilmRepository = (*FilmDB)(nil)

type FilmDB struct {
	db *DB
}

const filmColumns = `id, name, description, release_date, duration, mpa_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanFilm(row scanner) (model.Film, error) {
	var (
		f       model.Film
		release string
		mpaID   int
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &release, &f.Duration, &mpaID); err != nil {
		return model.Film{}, err
	}

	date, err := model.ParseDate(release)
	if err != nil {
		return model.Film{}, fmt.Errorf("film %d: %w", f.ID, err)
	}
	f.ReleaseDate = date
	f.MPA = repository.ResolveRating(mpaID)
	f.Genres = []model.Genre{}
	f.Likes = []int64{}
	return f, nil
}

// loadFilms selects films matching where (a clause with ? placeholders) and
// attaches their genres and likes. Rows are drained and closed before the
// follow-up queries run, since SQLite runs on a single connection.
func loadFilms(ctx context.Context, q sqlx.ExtContext, where string, args ...any) ([]model.Film, error) {
	rows, err := q.QueryContext(ctx, q.Rebind(`SELECT `+filmColumns+` FROM films `+where+` ORDER BY id`), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: selecting films: %w", err)
	}

	films := []model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: scanning film: %w", err)
		}
		films = append(films, f)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: iterating films: %w", err)
	}

	if len(films) == 0 {
		return films, nil
	}

	index := make(map[int64]*model.Film, len(films))
	ids := make([]int64, len(films))
	for i := range films {
		index[films[i].ID] = &films[i]
		ids[i] = films[i].ID
	}

	err = eachPair(ctx, q, `SELECT film_id, genre_id FROM film_genres WHERE film_id IN (?) ORDER BY film_id, genre_id`, ids,
		func(filmID, genreID int64) {
			f := index[filmID]
			f.Genres = append(f.Genres, repository.ResolveGenre(int(genreID)))
		})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading film genres: %w", err)
	}

	err = eachPair(ctx, q, `SELECT film_id, user_id FROM film_likes WHERE film_id IN (?) ORDER BY film_id, user_id`, ids,
		func(filmID, userID int64) {
			f := index[filmID]
			f.Likes = append(f.Likes, userID)
		})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading film likes: %w", err)
	}

	return films, nil
}

// eachPair expands the IN (?) in query over ids and calls fn for every
// (owner, value) row.
func eachPair(ctx context.Context, q sqlx.ExtContext, query string, ids []int64, fn func(owner, value int64)) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var owner, value int64
		if err := rows.Scan(&owner, &value); err != nil {
			return err
		}
		fn(owner, value)
	}
	return rows.Err()
}

func (s *FilmDB) List(ctx context.Context) ([]model.Film, error) {
	return loadFilms(ctx, s.db.conn, "")
}

func (s *FilmDB) GetByID(ctx context.Context, id int64) (*model.Film, error) {
	films, err := loadFilms(ctx, s.db.conn, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(films) == 0 {
		return nil, apperror.NotFound("film", id)
	}
	return &films[0], nil
}

func (s *FilmDB) ListByIDs(ctx context.Context, ids []int64) ([]model.Film, error) {
	if len(ids) == 0 {
		return []model.Film{}, nil
	}
	where, args, err := sqlx.In("WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: expanding film ids: %w", err)
	}
	return loadFilms(ctx, s.db.conn, where, args...)
}

func (s *FilmDB) Create(ctx context.Context, film *model.Film) error {
	repository.PrepareFilm(film)

	var id int64
	err := s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, filmSequence); err != nil {
			return err
		}

		if _, err := exec(ctx, tx,
			`INSERT INTO films (id, name, description, release_date, duration, mpa_id) VALUES (?, ?, ?, ?, ?, ?)`,
			id, film.Name, film.Description, film.ReleaseDate.String(), film.Duration, film.MPA.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: inserting film: %w", err)
		}
		return insertGenres(ctx, tx, id, film.Genres)
	})
	if err != nil {
		return err
	}

	film.ID = id
	film.Likes = []int64{}
	return nil
}

func (s *FilmDB) Update(ctx context.Context, film *model.Film) error {
	repository.PrepareFilm(film)

	var likes []int64
	err := s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx,
			`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ? WHERE id = ?`,
			film.Name, film.Description, film.ReleaseDate.String(), film.Duration, film.MPA.ID, film.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: updating film %d: %w", film.ID, err)
		}
		if n == 0 {
			return apperror.NotFound("film", film.ID)
		}

		if _, err := exec(ctx, tx, `DELETE FROM film_genres WHERE film_id = ?`, film.ID); err != nil {
			return fmt.Errorf("sqlstore: clearing genres of film %d: %w", film.ID, err)
		}
		if err := insertGenres(ctx, tx, film.ID, film.Genres); err != nil {
			return err
		}

		likes = []int64{}
		if err := tx.SelectContext(ctx, &likes,
			tx.Rebind(`SELECT user_id FROM film_likes WHERE film_id = ? ORDER BY user_id`), film.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: loading likes of film %d: %w", film.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	film.Likes = likes
	return nil
}

func insertGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genres []model.Genre) error {
	for _, g := range genres {
		if _, err := exec(ctx, tx,
			`INSERT INTO film_genres (film_id, genre_id) VALUES (?, ?)`, filmID, g.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: linking genre %d to film %d: %w", g.ID, filmID, err)
		}
	}
	return nil
}

func (s *FilmDB) Delete(ctx context.Context, id int64) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM film_likes WHERE film_id = ?`,
			`DELETE FROM film_genres WHERE film_id = ?`,
		} {
			if _, err := exec(ctx, tx, stmt, id); err != nil {
				return fmt.Errorf("sqlstore: deleting film %d: %w", id, err)
			}
		}

		n, err := exec(ctx, tx, `DELETE FROM films WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting film %d: %w", id, err)
		}
		if n == 0 {
			return apperror.NotFound("film", id)
		}
		return nil
	})
}

func (s *FilmDB) DeleteAll(ctx context.Context) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{`DELETE FROM film_likes`, `DELETE FROM film_genres`} {
			if _, err := exec(ctx, tx, stmt); err != nil {
				return fmt.Errorf("sqlstore: deleting films: %w", err)
			}
		}

		n, err := exec(ctx, tx, `DELETE FROM films`)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting films: %w", err)
		}
		if n == 0 {
			return apperror.Missing("no films to delete")
		}
		return nil
	})
}

func (s *FilmDB) AddLike(ctx context.Context, filmID, userID int64) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkFilmAndUser(ctx, tx, filmID, userID); err != nil {
			return err
		}

		liked, err := hasLike(ctx, tx, filmID, userID)
		if err != nil {
			return err
		}
		if liked {
			return apperror.AlreadyExists(fmt.Sprintf("user %d already likes film %d", userID, filmID))
		}

		if _, err := exec(ctx, tx,
			`INSERT INTO film_likes (film_id, user_id) VALUES (?, ?)`, filmID, userID,
		); err != nil {
			return fmt.Errorf("sqlstore: inserting like: %w", err)
		}
		return nil
	})
}

func (s *FilmDB) RemoveLike(ctx context.Context, filmID, userID int64) error {
	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkFilmAndUser(ctx, tx, filmID, userID); err != nil {
			return err
		}

		n, err := exec(ctx, tx, `DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`, filmID, userID)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting like: %w", err)
		}
		if n == 0 {
			return apperror.Missing(fmt.Sprintf("user %d has not liked film %d", userID, filmID))
		}
		return nil
	})
}

func checkFilmAndUser(ctx context.Context, q sqlx.ExtContext, filmID, userID int64) error {
	ok, err := exists(ctx, q, "films", filmID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("film", filmID)
	}

	ok, err = exists(ctx, q, "users", userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("user", userID)
	}
	return nil
}

func hasLike(ctx context.Context, q sqlx.ExtContext, filmID, userID int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count,
		q.Rebind(`SELECT COUNT(*) FROM film_likes WHERE film_id = ? AND user_id = ?`), filmID, userID)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking like: %w", err)
	}
	return count > 0, nil
}
