package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"todo-game/internal/db"
)

// SQLStore keeps tasks in the single todos table of a Postgres or SQLite
// database. The schema is expected to be migrated with db.Migrate.
type SQLStore struct {
	db  *sql.DB
	d   db.Dialect
	now func() time.Time
}

func NewSQLStore(dbx *sql.DB, d db.Dialect) *SQLStore {
	return &SQLStore{db: dbx, d: d, now: time.Now}
}

const selectColumns = `
	id,
	text,
	completed,
	COALESCE(priority, 1),
	due_date,
	category,
	COALESCE(tags, '[]'),
	COALESCE(archived, 0),
	created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t         Task
		completed int64
		priority  int64
		archived  int64
		dueDate   sql.NullString
		category  sql.NullString
		tagsJSON  string
		createdAt timestamp
	)
	err := row.Scan(&t.ID, &t.Text, &completed, &priority, &dueDate, &category, &tagsJSON, &archived, &createdAt)
	if err != nil {
		return Task{}, err
	}

	t.Completed = completed != 0
	t.Archived = archived != 0
	t.Priority = Priority(priority)
	if dueDate.Valid && dueDate.String != "" {
		t.DueDate = &dueDate.String
	}
	if category.Valid && category.String != "" {
		t.Category = &category.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil || t.Tags == nil {
		t.Tags = TagList{}
	}
	t.CreatedAt = createdAt.Time
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// listWhere composes the conjunctive WHERE clause for q. The search
// predicate is not part of it: SQLite's LOWER only folds ASCII, so
// List applies it to the scanned rows instead.
func listWhere(q ListQuery) (string, []any) {
	conds := []string{"COALESCE(archived, 0) = ?"}
	args := []any{boolInt(q.wantArchived())}

	switch q.Filter {
	case FilterActive:
		conds = append(conds, "completed = 0")
	case FilterCompleted:
		conds = append(conds, "completed = 1")
	}
	if q.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, q.Category)
	}
	if q.Priority != nil {
		conds = append(conds, "COALESCE(priority, 1) = ?")
		args = append(args, int(*q.Priority))
	}
	return strings.Join(conds, " AND "), args
}

func (s *SQLStore) orderBy(key string) string {
	switch key {
	case SortPriority:
		return "COALESCE(priority, 1) DESC, created_at DESC, id DESC"
	case SortDueDate:
		return "CASE WHEN due_date IS NULL OR due_date = '' THEN 1 ELSE 0 END, " +
			s.d.TextOrder("due_date") + " ASC, created_at DESC, id DESC"
	case SortText:
		return s.d.TextOrder("text") + " ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

func (s *SQLStore) List(ctx context.Context, q ListQuery) ([]Task, error) {
	where, args := listWhere(q)
	query := "SELECT " + selectColumns + " FROM todos WHERE " + where + " ORDER BY " + s.orderBy(q.Sort)

	rows, err := s.db.QueryContext(ctx, s.d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		if !q.matchesSearch(t) {
			continue
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return result, nil
}

func (s *SQLStore) Get(ctx context.Context, id int) (Task, error) {
	row := s.db.QueryRowContext(ctx, s.d.Rebind("SELECT "+selectColumns+" FROM todos WHERE id = ?"), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) Create(ctx context.Context, req CreateRequest) (Task, error) {
	d, err := req.normalize()
	if err != nil {
		return Task{}, err
	}

	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return Task{}, fmt.Errorf("encode tags: %w", err)
	}
	created := s.now().UTC().Truncate(time.Microsecond)

	t := Task{
		Text:      d.Text,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		Category:  d.Category,
		Tags:      d.Tags,
		CreatedAt: created,
	}
	err = s.db.QueryRowContext(ctx, s.d.Rebind(`
		INSERT INTO todos (text, completed, priority, due_date, category, tags, archived, created_at)
		VALUES (?, 0, ?, ?, ?, ?, 0, ?)
		RETURNING id
	`), d.Text, int(d.Priority), nullable(d.DueDate), nullable(d.Category), string(tags), created).Scan(&t.ID)
	if err != nil {
		return Task{}, fmt.Errorf("insert todo: %w", err)
	}
	return t, nil
}

func (s *SQLStore) Update(ctx context.Context, id int, req UpdateRequest) (Task, error) {
	if err := req.validate(); err != nil {
		return Task{}, err
	}
	if req.Empty() {
		return s.Get(ctx, id)
	}

	// Normalise through apply so both stores store identical values.
	var v Task
	req.apply(&v)

	var (
		sets []string
		args []any
	)
	if req.Text.Set {
		sets, args = append(sets, "text = ?"), append(args, v.Text)
	}
	if req.Completed.Set {
		sets, args = append(sets, "completed = ?"), append(args, boolInt(v.Completed))
	}
	if req.Priority.Set {
		sets, args = append(sets, "priority = ?"), append(args, int(v.Priority))
	}
	if req.DueDate.Set {
		sets, args = append(sets, "due_date = ?"), append(args, nullable(v.DueDate))
	}
	if req.Category.Set {
		sets, args = append(sets, "category = ?"), append(args, nullable(v.Category))
	}
	if req.Tags.Set {
		tags, err := json.Marshal(v.Tags)
		if err != nil {
			return Task{}, fmt.Errorf("encode tags: %w", err)
		}
		sets, args = append(sets, "tags = ?"), append(args, string(tags))
	}
	if req.Archived.Set {
		sets, args = append(sets, "archived = ?"), append(args, boolInt(v.Archived))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.d.Rebind("UPDATE todos SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return Task{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Task{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, s.d.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Batch(ctx context.Context, req BatchRequest) (int, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	conds := []string{"COALESCE(archived, 0) = ?"}
	args := []any{boolInt(req.targetsArchived())}
	if len(req.IDs) > 0 {
		marks := make([]string, len(req.IDs))
		for i, id := range req.IDs {
			marks[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, "id IN ("+strings.Join(marks, ", ")+")")
	} else {
		switch req.Filter {
		case FilterActive:
			conds = append(conds, "completed = 0")
		case FilterCompleted:
			conds = append(conds, "completed = 1")
		}
	}
	where := strings.Join(conds, " AND ")

	var stmt string
	switch req.Action {
	case ActionDelete:
		stmt = "DELETE FROM todos WHERE " + where
	case ActionComplete:
		stmt = "UPDATE todos SET completed = 1 WHERE " + where
	case ActionUncomplete:
		stmt = "UPDATE todos SET completed = 0 WHERE " + where
	case ActionArchive:
		stmt = "UPDATE todos SET archived = 1 WHERE " + where
	case ActionUnarchive:
		stmt = "UPDATE todos SET archived = 0 WHERE " + where
	}

	res, err := s.db.ExecContext(ctx, s.d.Rebind(stmt), args...)
	if err != nil {
		return 0, fmt.Errorf("batch %s: %w", req.Action, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("batch %s: %w", req.Action, err)
	}
	return int(affected), nil
}

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN COALESCE(archived, 0) = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN COALESCE(archived, 0) = 0 AND completed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN COALESCE(archived, 0) = 0 AND completed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN COALESCE(archived, 0) = 0 AND COALESCE(priority, 1) = 2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN COALESCE(archived, 0) = 1 THEN 1 ELSE 0 END), 0)
		FROM todos
	`).Scan(&st.Total, &st.Completed, &st.Active, &st.HighPriority, &st.Archived)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (s *SQLStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category
		FROM todos
		WHERE category IS NOT NULL AND category <> '' AND COALESCE(archived, 0) = 0
	`)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// timestamp scans created_at whether the driver yields time.Time or text.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("created_at: unsupported type %T", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", s)
}
