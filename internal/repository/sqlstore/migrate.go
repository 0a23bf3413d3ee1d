package sqlstore

import (
	"context"
	"fmt"
)

// migrations run in order on every start. Each statement is idempotent, so
// running them against an existing database is a no-op.
//
// Column types stick to what both SQLite and PostgreSQL accept. Ids are not
// auto-increment columns: they come from id_sequences so that an id is never
// handed out twice, even after every row of a table has been deleted.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`INSERT INTO id_sequences (name, value) VALUES ('films', 0) ON CONFLICT (name) DO NOTHING`,
	`INSERT INTO id_sequences (name, value) VALUES ('users', 0) ON CONFLICT (name) DO NOTHING`,

	`CREATE TABLE IF NOT EXISTS users (
		id       BIGINT PRIMARY KEY,
		email    TEXT NOT NULL,
		login    TEXT NOT NULL,
		name     TEXT NOT NULL,
		birthday TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS films (
		id           BIGINT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL,
		duration     INTEGER NOT NULL,
		mpa_id       INTEGER NOT NULL
	)`,

	// Genre and rating names live in the static tables of the model package;
	// only their ids are stored.
	`CREATE TABLE IF NOT EXISTS film_genres (
		film_id  BIGINT NOT NULL REFERENCES films(id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL,
		PRIMARY KEY (film_id, genre_id)
	)`,

	`CREATE TABLE IF NOT EXISTS film_likes (
		film_id BIGINT NOT NULL REFERENCES films(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (film_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_film_likes_user_id ON film_likes(user_id)`,

	// One row per direction. confirmed is written but never read back.
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friendships_friend_id ON friendships(friend_id)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
