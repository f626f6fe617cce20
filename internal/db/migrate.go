package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Table is the single table holding todos.
const Table = "todos"

var createTable = map[string]string{
	"postgres": `
		CREATE TABLE IF NOT EXISTS todos (
			id         SERIAL PRIMARY KEY,
			text       TEXT NOT NULL,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	"sqlite": `
		CREATE TABLE IF NOT EXISTS todos (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			text       TEXT NOT NULL,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
}

// column is an additive column added when missing from an existing table.
type column struct {
	name       string
	definition string
}

// Columns introduced after the first schema, in the order they appeared.
var additive = []column{
	{"priority", "INTEGER DEFAULT 1"},
	{"due_date", "TEXT"},
	{"category", "TEXT"},
	{"tags", "TEXT"},
	{"archived", "INTEGER DEFAULT 0"},
}

// Migrate creates the todos table and adds any column an older schema lacks.
// It never drops or rewrites data.
func Migrate(ctx context.Context, dbx *sql.DB, d Dialect, log *zap.Logger) error {
	ddl, ok := createTable[d.Name]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", d.Name)
	}
	if _, err := dbx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: create table: %w", err)
	}

	existing, err := Columns(ctx, dbx, d, Table)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, c := range additive {
		if existing[c.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", Table, c.name, c.definition)
		if _, err := dbx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: add column %s: %w", c.name, err)
		}
		log.Info("added column", zap.String("table", Table), zap.String("column", c.name))
	}
	return nil
}

// Columns returns the set of column names of table.
func Columns(ctx context.Context, dbx *sql.DB, d Dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch d.Name {
	case Postgres.Name:
		rows, err = dbx.QueryContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
		`, table)
	case SQLite.Name:
		rows, err = dbx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", d.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
