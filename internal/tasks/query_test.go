package tasks

import (
	"net/url"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestParseListQuery(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		priority *Priority
		archived *bool
	}{
		{"empty", "", nil, nil},
		{"priority", "priority=2", ptr(PriorityHigh), nil},
		{"bad priority matches nothing", "priority=high", ptr(Priority(-1)), nil},
		{"blank priority ignored", "priority=", nil, nil},
		{"archived true", "archived=true", nil, ptr(true)},
		{"archived other", "archived=yes", nil, ptr(false)},
		{"archived empty", "archived=", nil, ptr(false)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := url.ParseQuery(tc.raw)
			if err != nil {
				t.Fatal(err)
			}
			q := ParseListQuery(v)
			if (q.Priority == nil) != (tc.priority == nil) || (q.Priority != nil && *q.Priority != *tc.priority) {
				t.Errorf("Priority = %v, want %v", q.Priority, tc.priority)
			}
			if (q.Archived == nil) != (tc.archived == nil) || (q.Archived != nil && *q.Archived != *tc.archived) {
				t.Errorf("Archived = %v, want %v", q.Archived, tc.archived)
			}
		})
	}

	v, _ := url.ParseQuery("filter=active&sort=dueDate&search=Milk&category=home")
	q := ParseListQuery(v)
	if q.Filter != FilterActive || q.Sort != SortDueDate || q.Search != "Milk" || q.Category != "home" {
		t.Errorf("ParseListQuery = %+v", q)
	}
}

func TestListQueryValuesRoundTrip(t *testing.T) {
	q := ListQuery{
		Filter:   FilterCompleted,
		Sort:     SortPriority,
		Search:   "a b&c",
		Category: "work",
		Priority: ptr(PriorityLow),
		Archived: ptr(true),
	}
	got := ParseListQuery(q.Values())
	if got.Filter != q.Filter || got.Sort != q.Sort || got.Search != q.Search || got.Category != q.Category ||
		*got.Priority != *q.Priority || *got.Archived != *q.Archived {
		t.Errorf("round trip = %+v, want %+v", got, q)
	}

	if v := (ListQuery{Filter: FilterAll}).Values(); len(v) != 0 {
		t.Errorf("default query should encode to nothing, got %v", v)
	}
}

// genTasks draws a list of tasks with colliding timestamps, priorities
// and due dates so ties are exercised.
func genTasks(t *rapid.T) []Task {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := rapid.IntRange(0, 30).Draw(t, "n")
	list := make([]Task, n)
	for i := range list {
		task := Task{
			ID:        i + 1,
			Text:      rapid.StringMatching(`[a-cA-C]{1,3}`).Draw(t, "text"),
			Completed: rapid.Bool().Draw(t, "completed"),
			Priority:  Priority(rapid.IntRange(0, 2).Draw(t, "priority")),
			Archived:  rapid.Bool().Draw(t, "archived"),
			CreatedAt: base.Add(time.Duration(rapid.IntRange(0, 5).Draw(t, "created")) * time.Minute),
			Tags:      TagList{},
		}
		if rapid.Bool().Draw(t, "hasDue") {
			task.DueDate = ptr(rapid.SampledFrom([]string{"2026-01-01", "2026-02-01", "2026-03-01"}).Draw(t, "due"))
		}
		if rapid.Bool().Draw(t, "hasCategory") {
			task.Category = ptr(rapid.SampledFrom([]string{"home", "work"}).Draw(t, "category"))
		}
		list[i] = task
	}
	return list
}

func TestSortTasks_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		list := genTasks(rt)
		key := rapid.SampledFrom([]string{"", SortDate, SortPriority, SortDueDate, SortText}).Draw(rt, "sort")
		SortTasks(list, key)

		for i := 1; i < len(list); i++ {
			a, b := list[i-1], list[i]
			switch key {
			case SortPriority:
				if a.Priority < b.Priority {
					rt.Fatalf("priority increases at %d: %d then %d", i, a.Priority, b.Priority)
				}
				if a.Priority == b.Priority && a.CreatedAt.Before(b.CreatedAt) {
					rt.Fatalf("priority tie not newest first at %d", i)
				}
			case SortDueDate:
				if a.DueDate == nil && b.DueDate != nil {
					rt.Fatalf("todo without due date before one with a due date at %d", i)
				}
				if a.DueDate != nil && b.DueDate != nil && *a.DueDate > *b.DueDate {
					rt.Fatalf("due dates not ascending at %d: %s then %s", i, *a.DueDate, *b.DueDate)
				}
			case SortText:
				if a.Text > b.Text {
					rt.Fatalf("text not ascending at %d: %q then %q", i, a.Text, b.Text)
				}
			default:
				if a.CreatedAt.Before(b.CreatedAt) {
					rt.Fatalf("createdAt increases at %d", i)
				}
				if a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID {
					rt.Fatalf("createdAt tie not newer id first at %d", i)
				}
			}
		}
	})
}

func TestMatch_ArchivedProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		list := genTasks(rt)

		var def, onlyArchived, onlyCurrent int
		archived := 0
		for _, task := range list {
			if task.Archived {
				archived++
			}
			if (ListQuery{}).Match(task) {
				def++
			}
			if (ListQuery{Archived: ptr(true)}).Match(task) {
				onlyArchived++
			}
			if (ListQuery{Archived: ptr(false)}).Match(task) {
				onlyCurrent++
			}
		}
		if onlyArchived != archived {
			rt.Fatalf("archived=true matched %d, want %d", onlyArchived, archived)
		}
		if def != len(list)-archived || onlyCurrent != def {
			rt.Fatalf("default matched %d, archived=false matched %d, want %d", def, onlyCurrent, len(list)-archived)
		}
	})
}

func TestMatch_Conjunctive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := genTasks(rt)
		if len(task) == 0 {
			return
		}
		q := ListQuery{
			Filter:   rapid.SampledFrom([]string{"", FilterActive, FilterCompleted}).Draw(rt, "filter"),
			Category: rapid.SampledFrom([]string{"", "home", "work"}).Draw(rt, "category"),
			Search:   rapid.SampledFrom([]string{"", "a", "B", "wor"}).Draw(rt, "search"),
		}
		for _, tk := range task {
			all := q.Match(tk)
			each := (ListQuery{Filter: q.Filter}).Match(tk) &&
				(ListQuery{Category: q.Category}).Match(tk) &&
				(ListQuery{Search: q.Search}).Match(tk)
			if all != each {
				rt.Fatalf("Match(%+v) = %v, but per-predicate = %v", tk, all, each)
			}
		}
	})
}
