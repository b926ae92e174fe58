package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// OpenSQLite opens (creating if needed) the sqlite database at path and
// applies the schema. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// every connection to :memory: is its own database
	sqlite.SetMaxOpenConns(1)
	if _, err := sqlite.ExecContext(ctx, Schema); err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return sqlite, nil
}
