package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	Name   string // "postgres" or "sqlite"
	Driver string // database/sql driver name
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "postgres"}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite"}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", name)
	}
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if d.Name != Postgres.Name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TextOrder is the expression used to sort by text in byte order.
func (d Dialect) TextOrder(column string) string {
	if d.Name == Postgres.Name {
		return column + ` COLLATE "C"`
	}
	return column
}

// Connect opens a pool for the dialect and verifies it with a ping.
func Connect(ctx context.Context, d Dialect, connString string) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, connString)
	if err != nil {
		return nil, err
	}

	if d.Name == SQLite.Name {
		// one writer at a time avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
