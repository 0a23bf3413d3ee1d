package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	filmSequence = "films"
	userSequence = "users"
)

// nextID advances the named sequence inside tx and returns the new value.
// Because the increment is part of the caller's transaction, a rolled back
// insert also rolls back its id.
func nextID(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE id_sequences SET value = value + 1 WHERE name = ?`), name,
	); err != nil {
		return 0, fmt.Errorf("sqlstore: advancing %s sequence: %w", name, err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id,
		tx.Rebind(`SELECT value FROM id_sequences WHERE name = ?`), name,
	); err != nil {
		return 0, fmt.Errorf("sqlstore: reading %s sequence: %w", name, err)
	}
	return id, nil
}
