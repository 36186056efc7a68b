package persistence

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	_ "github.com/akvileja/soclog-tools/internal/persistence/migrations"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var gooseSetup = sync.OnceValue(func() error {
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("sqlite3")
})

// migrate brings the schema up to date; safe to call on every open.
func migrate(db *sql.DB) error {
	if err := gooseSetup(); err != nil {
		return fmt.Errorf("configure migrations: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
