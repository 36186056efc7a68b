package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up00003, Down00003)
}

// Rows imported before the finished flag existed left it at 0 even when a
// winner was recorded.
func Up00003(ctx context.Context, tx *sql.Tx) error {
	res, err := tx.ExecContext(ctx, `UPDATE games
		SET finished = 1
		WHERE finished = 0 AND winner_pn >= 0`)
	if err != nil {
		return fmt.Errorf("backfill finished: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("backfill finished rows: %w", err)
	}
	return nil
}

func Down00003(context.Context, *sql.Tx) error {
	return nil
}
