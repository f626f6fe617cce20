package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"todo-game/internal/db"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")
	dbx, err := db.Connect(ctx, db.SQLite, "file:"+path)
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	if err := db.Migrate(ctx, dbx, db.SQLite, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewSQLStore(dbx, db.SQLite)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore_SQLite(t *testing.T) {
	runStoreContract(t, func(t *testing.T, now func() time.Time) Store {
		s := openSQLite(t)
		s.now = now
		return s
	})
}

// TestSQLStore_Postgres runs against a scratch database named by
// TODO_TEST_POSTGRES_DSN. The todos table is dropped first.
func TestSQLStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_POSTGRES_DSN not set")
	}
	runStoreContract(t, func(t *testing.T, now func() time.Time) Store {
		ctx := context.Background()
		dbx, err := db.Connect(ctx, db.Postgres, dsn)
		if err != nil {
			t.Fatalf("connect postgres: %v", err)
		}
		if _, err := dbx.ExecContext(ctx, "DROP TABLE IF EXISTS todos"); err != nil {
			t.Fatalf("drop table: %v", err)
		}
		if err := db.Migrate(ctx, dbx, db.Postgres, zap.NewNop()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		s := NewSQLStore(dbx, db.Postgres)
		s.now = now
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLStore_ReadsLegacyRows(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	// Rows written before the optional columns existed, or by other tools.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (text, completed, created_at, priority, tags, archived)
		VALUES ('legacy', 1, '2025-01-02 03:04:05', NULL, 'not json', NULL)
	`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := s.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	got := list[0]
	if got.Priority != PriorityMedium {
		t.Errorf("Priority = %d, want default 1", got.Priority)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags = %#v, want []", got.Tags)
	}
	if got.Archived || !got.Completed {
		t.Errorf("flags = completed %v archived %v", got.Completed, got.Archived)
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}
}

func TestSQLStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	open := func() *SQLStore {
		dbx, err := db.Connect(ctx, db.SQLite, "file:"+path)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		if err := db.Migrate(ctx, dbx, db.SQLite, zap.NewNop()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return NewSQLStore(dbx, db.SQLite)
	}

	s := open()
	created, err := s.Create(ctx, CreateRequest{Text: "persist me", Tags: TagList{"x"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = s.Close()

	s = open()
	defer s.Close()
	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Text != "persist me" || !sameStrings(got.Tags, []string{"x"}) {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2026, 2, 3, 4, 5, 6, 700000000, time.UTC)
	cases := []any{
		want,
		want.Format(time.RFC3339Nano),
		[]byte("2026-02-03 04:05:06.7+00:00"),
		"2026-02-03 04:05:06.7Z",
	}
	for _, src := range cases {
		var ts timestamp
		if err := ts.Scan(src); err != nil {
			t.Errorf("Scan(%v): %v", src, err)
			continue
		}
		if !ts.Equal(want) {
			t.Errorf("Scan(%v) = %v, want %v", src, ts.Time, want)
		}
	}

	var ts timestamp
	if err := ts.Scan(42); err == nil {
		t.Error("expected error for int source")
	}
}
