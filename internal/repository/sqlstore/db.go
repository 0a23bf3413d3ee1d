// Package sqlstore implements the repository interfaces on relational
// tables through sqlx.
//
// The same code serves two drivers:
//
//   - "sqlite"   (modernc.org/sqlite, pure Go, the default; ":memory:" in tests)
//   - "postgres" (github.com/lib/pq)
//
// Queries are written with ? placeholders and passed through Rebind, which
// turns them into $1, $2, ... for PostgreSQL. Column types are restricted to
// the subset both engines understand; dates are stored as "2006-01-02" text.
//
// TRANSACTIONS:
// Every write that needs more than one statement (insert a film and its
// genre links, add both halves of a friendship, cascade a delete) runs in a
// single transaction through withTx. Either all statements land or none do.
//
// ROW MAPPING:
// Rows are scanned field by field into model structs (see scanFilm and
// scanUser). Relationship sets are loaded with one IN (...) query per set
// rather than one query per row.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	// Drivers register themselves with database/sql in init().
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// sqlx knows "sqlite3" but not modernc's "sqlite" driver name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps a sqlx connection pool. Films and Users return the two
// repository views over it.
type DB struct {
	conn *sqlx.DB
}

// New opens the database, applies connection settings and runs migrations.
//
// For SQLite the pool is capped at one connection: every ":memory:"
// connection is a separate empty database, and PRAGMA foreign_keys is a
// per-connection setting.
func New(driver, dsn string) (*DB, error) {
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("sqlstore: %s: %w", pragma, err)
			}
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Films() *FilmDB {
	return &FilmDB{db: db}
}

func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// withTx runs fn inside a transaction. fn's error rolls the transaction back
// and is returned unchanged so domain errors keep their kind.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("sqlstore: rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing transaction: %w", err)
	}
	return nil
}

// exec runs a rebound statement and returns the number of affected rows.
func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// exists reports whether table has a row with the given id. table is always
// one of the constant table names in this package.
func exists(ctx context.Context, q sqlx.ExtContext, table string, id int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, q.Rebind(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking %s %d: %w", table, id, err)
	}
	return count > 0, nil
}
