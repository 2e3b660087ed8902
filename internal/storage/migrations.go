package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration upgrades databases written by older builds. Up runs inside a
// transaction together with its schema_migrations record.
type migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "Add method column to endpoint",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			return addColumnIfMissing(ctx, tx, "endpoint", "method", "TEXT NOT NULL DEFAULT 'GET'")
		},
	},
	{
		Version: 2,
		Name:    "Add is_on column to query_param and header",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			if err := addColumnIfMissing(ctx, tx, "query_param", "is_on", "BOOLEAN NOT NULL DEFAULT 1"); err != nil {
				return err
			}
			return addColumnIfMissing(ctx, tx, "header", "is_on", "BOOLEAN NOT NULL DEFAULT 1")
		},
	},
	{
		Version: 3,
		Name:    "Add lookup indexes",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_endpoint_url_method ON endpoint(url, method);
				CREATE INDEX IF NOT EXISTS idx_response_endpoint ON response(parent_endpoint_id, received_time DESC);
				CREATE INDEX IF NOT EXISTS idx_query_param_response ON query_param(parent_response_id);
				CREATE INDEX IF NOT EXISTS idx_header_response ON header(parent_response_id);
			`)
			return err
		},
	},
}

const schema = `
CREATE TABLE IF NOT EXISTS endpoint (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL DEFAULT '',
	method TEXT NOT NULL DEFAULT 'GET'
);

CREATE TABLE IF NOT EXISTS response (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_endpoint_id INTEGER NOT NULL REFERENCES endpoint(id) ON DELETE CASCADE,
	text TEXT NOT NULL DEFAULT '',
	code INTEGER NOT NULL DEFAULT 0,
	received_time INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS query_param (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_response_id INTEGER NOT NULL REFERENCES response(id) ON DELETE CASCADE,
	key TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL DEFAULT '',
	is_on BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS header (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_response_id INTEGER NOT NULL REFERENCES response(id) ON DELETE CASCADE,
	key TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL DEFAULT '',
	is_on BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// migrate creates missing tables then applies pending migrations in order
func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		logger.Info("applied migration",
			slog.Int("version", m.Version),
			slog.String("name", m.Name))
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = m.Up(ctx, tx); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	return version, nil
}

// addColumnIfMissing is needed because SQLite has no ADD COLUMN IF NOT EXISTS
func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	exists, err := hasColumn(ctx, tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scan %s columns: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
