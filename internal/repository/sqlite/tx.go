package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back when fn returns an error or panics; panics are rethrown.
func withTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("committing transaction: %w", cerr)
		}
	}()

	return fn(tx)
}
