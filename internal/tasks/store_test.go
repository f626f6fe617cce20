package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

// storeFactory builds an empty store whose clock is now.
type storeFactory func(t *testing.T, now func() time.Time) Store

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// frozenClock returns the same instant on every call.
func frozenClock() func() time.Time {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, s Store, req CreateRequest) Task {
	t.Helper()
	task, err := s.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create(%q): %v", req.Text, err)
	}
	return task
}

func mustUpdate(t *testing.T, s Store, id int, req UpdateRequest) Task {
	t.Helper()
	task, err := s.Update(context.Background(), id, req)
	if err != nil {
		t.Fatalf("Update(%d): %v", id, err)
	}
	return task
}

func mustList(t *testing.T, s Store, q ListQuery) []Task {
	t.Helper()
	list, err := s.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List(%+v): %v", q, err)
	}
	return list
}

func ids(list []Task) []int {
	out := make([]int, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// runStoreContract checks the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("create rejects blank text", func(t *testing.T) {
		s := newStore(t, stepClock())
		for _, text := range []string{"", "   ", "\t\n"} {
			_, err := s.Create(ctx, CreateRequest{Text: text})
			if !isValidation(err) {
				t.Errorf("Create(%q) error = %v, want ValidationError", text, err)
			}
		}
		if list := mustList(t, s, ListQuery{}); len(list) != 0 {
			t.Errorf("expected no todos persisted, got %d", len(list))
		}
	})

	t.Run("create rejects unknown priority", func(t *testing.T) {
		s := newStore(t, stepClock())
		_, err := s.Create(ctx, CreateRequest{Text: "x", Priority: ptr(Priority(3))})
		if !isValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("create applies defaults", func(t *testing.T) {
		s := newStore(t, stepClock())
		got := mustCreate(t, s, CreateRequest{Text: "  buy milk  ", DueDate: ptr(""), Category: ptr("  ")})
		if got.Text != "buy milk" {
			t.Errorf("Text = %q, want trimmed", got.Text)
		}
		if got.Priority != PriorityMedium {
			t.Errorf("Priority = %d, want 1", got.Priority)
		}
		if got.Completed || got.Archived {
			t.Errorf("new todo should be open and unarchived: %+v", got)
		}
		if got.Tags == nil || len(got.Tags) != 0 {
			t.Errorf("Tags = %#v, want empty non-nil", got.Tags)
		}
		if got.DueDate != nil || got.Category != nil {
			t.Errorf("blank dueDate/category should be absent: %v %v", got.DueDate, got.Category)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}

		read, err := s.Get(ctx, got.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if read.Text != got.Text || read.Priority != got.Priority || !read.CreatedAt.Equal(got.CreatedAt) {
			t.Errorf("Get = %+v, want %+v", read, got)
		}
	})

	t.Run("ids are unique and stable", func(t *testing.T) {
		s := newStore(t, stepClock())
		seen := map[int]bool{}
		var created []Task
		for _, text := range []string{"a", "b", "c", "d"} {
			task := mustCreate(t, s, CreateRequest{Text: text})
			if seen[task.ID] {
				t.Fatalf("duplicate id %d", task.ID)
			}
			seen[task.ID] = true
			created = append(created, task)
		}
		for i := 1; i < len(created); i++ {
			if created[i].ID <= created[i-1].ID {
				t.Errorf("ids not increasing: %v", ids(created))
			}
		}
		mustUpdate(t, s, created[1].ID, UpdateRequest{Text: Some("b2")})
		if err := s.Delete(ctx, created[2].ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		for _, c := range []Task{created[0], created[1], created[3]} {
			got, err := s.Get(ctx, c.ID)
			if err != nil || got.ID != c.ID {
				t.Errorf("Get(%d) = %v, %v", c.ID, got.ID, err)
			}
		}
		next := mustCreate(t, s, CreateRequest{Text: "e"})
		if seen[next.ID] {
			t.Errorf("id %d reused after delete", next.ID)
		}
	})

	t.Run("archived filter", func(t *testing.T) {
		s := newStore(t, stepClock())
		a := mustCreate(t, s, CreateRequest{Text: "a"})
		b := mustCreate(t, s, CreateRequest{Text: "b"})
		c := mustCreate(t, s, CreateRequest{Text: "c"})
		mustUpdate(t, s, b.ID, UpdateRequest{Archived: Some(true)})

		if got := ids(mustList(t, s, ListQuery{})); !sameIDs(got, []int{c.ID, a.ID}) {
			t.Errorf("default list = %v, want %v", got, []int{c.ID, a.ID})
		}
		if got := ids(mustList(t, s, ListQuery{Archived: ptr(true)})); !sameIDs(got, []int{b.ID}) {
			t.Errorf("archived=true = %v, want %v", got, []int{b.ID})
		}
		if got := ids(mustList(t, s, ListQuery{Archived: ptr(false)})); !sameIDs(got, []int{c.ID, a.ID}) {
			t.Errorf("archived=false = %v, want %v", got, []int{c.ID, a.ID})
		}
	})

	t.Run("status, category, priority and search filters", func(t *testing.T) {
		s := newStore(t, stepClock())
		milk := mustCreate(t, s, CreateRequest{Text: "Buy MILK", Category: ptr("shopping"), Priority: ptr(PriorityHigh)})
		report := mustCreate(t, s, CreateRequest{Text: "write report", Category: ptr("work")})
		walk := mustCreate(t, s, CreateRequest{Text: "walk", Priority: ptr(PriorityLow)})
		eclair := mustCreate(t, s, CreateRequest{Text: "Éclair for Ödön", Category: ptr("Café")})
		mustUpdate(t, s, report.ID, UpdateRequest{Completed: Some(true)})

		cases := []struct {
			name string
			q    ListQuery
			want []int
		}{
			{"all", ListQuery{Filter: FilterAll}, []int{eclair.ID, walk.ID, report.ID, milk.ID}},
			{"unknown filter ignored", ListQuery{Filter: "bogus"}, []int{eclair.ID, walk.ID, report.ID, milk.ID}},
			{"active", ListQuery{Filter: FilterActive}, []int{eclair.ID, walk.ID, milk.ID}},
			{"completed", ListQuery{Filter: FilterCompleted}, []int{report.ID}},
			{"category", ListQuery{Category: "work"}, []int{report.ID}},
			{"priority", ListQuery{Priority: ptr(PriorityHigh)}, []int{milk.ID}},
			{"search text case-insensitive", ListQuery{Search: "milk"}, []int{milk.ID}},
			{"search category", ListQuery{Search: "SHOP"}, []int{milk.ID}},
			{"search wildcard is literal", ListQuery{Search: "%"}, []int{}},
			{"search folds non-ascii text", ListQuery{Search: "éclair"}, []int{eclair.ID}},
			{"search folds non-ascii upper case", ListQuery{Search: "ÖDÖN"}, []int{eclair.ID}},
			{"search folds non-ascii category", ListQuery{Search: "CAFÉ"}, []int{eclair.ID}},
			{"conjunctive", ListQuery{Filter: FilterActive, Search: "w"}, []int{walk.ID}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := ids(mustList(t, s, tc.q)); !sameIDs(got, tc.want) {
					t.Errorf("got %v, want %v", got, tc.want)
				}
			})
		}
	})

	t.Run("sorting", func(t *testing.T) {
		s := newStore(t, stepClock())
		a := mustCreate(t, s, CreateRequest{Text: "banana", Priority: ptr(PriorityLow), DueDate: ptr("2026-05-01")})
		b := mustCreate(t, s, CreateRequest{Text: "apple", Priority: ptr(PriorityHigh)})
		c := mustCreate(t, s, CreateRequest{Text: "cherry", Priority: ptr(PriorityHigh), DueDate: ptr("2026-04-01")})
		d := mustCreate(t, s, CreateRequest{Text: "Zebra", Priority: ptr(PriorityMedium)})

		cases := []struct {
			sort string
			want []int
		}{
			{"", []int{d.ID, c.ID, b.ID, a.ID}},
			{SortDate, []int{d.ID, c.ID, b.ID, a.ID}},
			{SortPriority, []int{c.ID, b.ID, d.ID, a.ID}},
			{SortDueDate, []int{c.ID, a.ID, d.ID, b.ID}},
			{SortText, []int{d.ID, b.ID, a.ID, c.ID}},
		}
		for _, tc := range cases {
			if got := ids(mustList(t, s, ListQuery{Sort: tc.sort})); !sameIDs(got, tc.want) {
				t.Errorf("sort %q = %v, want %v", tc.sort, got, tc.want)
			}
		}
	})

	t.Run("same creation time orders newer id first", func(t *testing.T) {
		s := newStore(t, frozenClock())
		a := mustCreate(t, s, CreateRequest{Text: "a"})
		b := mustCreate(t, s, CreateRequest{Text: "b"})
		if got := ids(mustList(t, s, ListQuery{})); !sameIDs(got, []int{b.ID, a.ID}) {
			t.Errorf("got %v, want %v", got, []int{b.ID, a.ID})
		}
	})

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		s := newStore(t, stepClock())
		orig := mustCreate(t, s, CreateRequest{
			Text:     "plan trip",
			Priority: ptr(PriorityHigh),
			DueDate:  ptr("2026-06-01"),
			Category: ptr("travel"),
			Tags:     TagList{"a", "b"},
		})

		got := mustUpdate(t, s, orig.ID, UpdateRequest{Completed: Some(true)})
		if !got.Completed {
			t.Error("completed not applied")
		}
		if got.Text != orig.Text || got.Priority != orig.Priority || *got.DueDate != *orig.DueDate ||
			*got.Category != *orig.Category || !sameStrings(got.Tags, orig.Tags) || got.Archived {
			t.Errorf("omitted fields changed: %+v", got)
		}
		if !got.CreatedAt.Equal(orig.CreatedAt) || got.ID != orig.ID {
			t.Errorf("id/createdAt changed: %+v", got)
		}

		got = mustUpdate(t, s, orig.ID, UpdateRequest{
			DueDate:  Null[string](),
			Category: Some(""),
			Tags:     Null[TagList](),
		})
		if got.DueDate != nil || got.Category != nil {
			t.Errorf("dueDate/category not cleared: %v %v", got.DueDate, got.Category)
		}
		if got.Tags == nil || len(got.Tags) != 0 {
			t.Errorf("tags = %#v, want []", got.Tags)
		}
		if !got.Completed || got.Text != "plan trip" {
			t.Errorf("unrelated fields changed: %+v", got)
		}

		got = mustUpdate(t, s, orig.ID, UpdateRequest{Text: Some("  plan holiday "), Priority: Some(PriorityLow)})
		if got.Text != "plan holiday" || got.Priority != PriorityLow {
			t.Errorf("text/priority not applied: %+v", got)
		}

		got = mustUpdate(t, s, orig.ID, UpdateRequest{})
		if got.Text != "plan holiday" {
			t.Errorf("empty update changed the todo: %+v", got)
		}
	})

	t.Run("update validation and lookup", func(t *testing.T) {
		s := newStore(t, stepClock())
		task := mustCreate(t, s, CreateRequest{Text: "x"})

		if _, err := s.Update(ctx, task.ID, UpdateRequest{Text: Some("  ")}); !isValidation(err) {
			t.Errorf("blank text: got %v, want ValidationError", err)
		}
		if _, err := s.Update(ctx, task.ID, UpdateRequest{Priority: Some(Priority(7))}); !isValidation(err) {
			t.Errorf("bad priority: got %v, want ValidationError", err)
		}
		if _, err := s.Update(ctx, task.ID+100, UpdateRequest{Completed: Some(true)}); !errors.Is(err, ErrNotFound) {
			t.Errorf("unknown id: got %v, want ErrNotFound", err)
		}
		if _, err := s.Update(ctx, task.ID+100, UpdateRequest{}); !errors.Is(err, ErrNotFound) {
			t.Errorf("unknown id, empty body: got %v, want ErrNotFound", err)
		}
		if got, _ := s.Get(ctx, task.ID); got.Text != "x" {
			t.Errorf("failed update changed text to %q", got.Text)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t, stepClock())
		task := mustCreate(t, s, CreateRequest{Text: "x"})
		if err := s.Delete(ctx, task.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete: %v", err)
		}
		if err := s.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("batch delete completed", func(t *testing.T) {
		s := newStore(t, stepClock())
		a := mustCreate(t, s, CreateRequest{Text: "a"})
		b := mustCreate(t, s, CreateRequest{Text: "b"})
		c := mustCreate(t, s, CreateRequest{Text: "c"})
		d := mustCreate(t, s, CreateRequest{Text: "d"})
		mustUpdate(t, s, a.ID, UpdateRequest{Completed: Some(true)})
		mustUpdate(t, s, b.ID, UpdateRequest{Completed: Some(true)})
		// completed but archived: outside the target set
		mustUpdate(t, s, c.ID, UpdateRequest{Completed: Some(true), Archived: Some(true)})

		n, err := s.Batch(ctx, BatchRequest{Action: ActionDelete, Filter: FilterCompleted})
		if err != nil {
			t.Fatalf("Batch: %v", err)
		}
		if n != 2 {
			t.Errorf("count = %d, want 2", n)
		}
		if got := ids(mustList(t, s, ListQuery{})); !sameIDs(got, []int{d.ID}) {
			t.Errorf("remaining = %v, want %v", got, []int{d.ID})
		}
		if got := ids(mustList(t, s, ListQuery{Archived: ptr(true)})); !sameIDs(got, []int{c.ID}) {
			t.Errorf("archived = %v, want %v", got, []int{c.ID})
		}
	})

	t.Run("batch by ids and unarchive", func(t *testing.T) {
		s := newStore(t, stepClock())
		a := mustCreate(t, s, CreateRequest{Text: "a"})
		b := mustCreate(t, s, CreateRequest{Text: "b"})
		c := mustCreate(t, s, CreateRequest{Text: "c"})

		n, err := s.Batch(ctx, BatchRequest{Action: ActionArchive, IDs: []int{a.ID, c.ID, 999}, Filter: FilterCompleted})
		if err != nil {
			t.Fatalf("archive: %v", err)
		}
		if n != 2 {
			t.Errorf("archive count = %d, want 2", n)
		}
		if got := ids(mustList(t, s, ListQuery{})); !sameIDs(got, []int{b.ID}) {
			t.Errorf("unarchived = %v, want %v", got, []int{b.ID})
		}

		// complete only touches non-archived todos
		n, err = s.Batch(ctx, BatchRequest{Action: ActionComplete})
		if err != nil || n != 1 {
			t.Errorf("complete = %d, %v; want 1", n, err)
		}

		n, err = s.Batch(ctx, BatchRequest{Action: ActionUnarchive})
		if err != nil || n != 2 {
			t.Errorf("unarchive = %d, %v; want 2", n, err)
		}
		for _, task := range mustList(t, s, ListQuery{Filter: FilterAll}) {
			if task.Archived {
				t.Errorf("todo %d still archived", task.ID)
			}
			if task.ID != b.ID && task.Completed {
				t.Errorf("archived todo %d was completed by the batch", task.ID)
			}
		}
	})

	t.Run("batch rejects bad actions", func(t *testing.T) {
		s := newStore(t, stepClock())
		mustCreate(t, s, CreateRequest{Text: "a"})
		for _, action := range []BatchAction{"", "explode"} {
			if _, err := s.Batch(ctx, BatchRequest{Action: action}); !isValidation(err) {
				t.Errorf("action %q: got %v, want ValidationError", action, err)
			}
		}
	})

	t.Run("stats and categories", func(t *testing.T) {
		s := newStore(t, stepClock())
		a := mustCreate(t, s, CreateRequest{Text: "a", Priority: ptr(PriorityHigh), Category: ptr("work")})
		mustCreate(t, s, CreateRequest{Text: "b", Category: ptr("home")})
		c := mustCreate(t, s, CreateRequest{Text: "c", Priority: ptr(PriorityHigh), Category: ptr("garden")})
		mustCreate(t, s, CreateRequest{Text: "d", Category: ptr("work")})
		mustCreate(t, s, CreateRequest{Text: "e"})
		mustUpdate(t, s, a.ID, UpdateRequest{Completed: Some(true)})
		mustUpdate(t, s, c.ID, UpdateRequest{Archived: Some(true)})

		st, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		want := Stats{Total: 4, Completed: 1, Active: 3, HighPriority: 1, Archived: 1}
		if st != want {
			t.Errorf("Stats = %+v, want %+v", st, want)
		}

		cats, err := s.Categories(ctx)
		if err != nil {
			t.Fatalf("Categories: %v", err)
		}
		if !sameStrings(cats, []string{"home", "work"}) {
			t.Errorf("Categories = %v, want [home work]", cats)
		}
	})
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
