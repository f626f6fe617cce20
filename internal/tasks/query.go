package tasks

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Status filter values.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// Sort keys.
const (
	SortDate     = "date"
	SortPriority = "priority"
	SortDueDate  = "dueDate"
	SortText     = "text"
)

// ListQuery holds the predicates and ordering of GET /todos. Every
// predicate is conjunctive; zero values mean "no constraint", except
// Archived, where nil means "exclude archived tasks".
type ListQuery struct {
	Filter   string
	Sort     string
	Search   string
	Category string
	Priority *Priority
	Archived *bool
}

// ParseListQuery reads a ListQuery from URL query parameters.
// An unparsable priority yields a filter that matches nothing.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		Filter:   v.Get("filter"),
		Sort:     v.Get("sort"),
		Search:   v.Get("search"),
		Category: v.Get("category"),
	}
	if s := strings.TrimSpace(v.Get("priority")); s != "" {
		p := Priority(-1)
		if n, err := strconv.Atoi(s); err == nil {
			p = Priority(n)
		}
		q.Priority = &p
	}
	if v.Has("archived") {
		archived := v.Get("archived") == "true"
		q.Archived = &archived
	}
	return q
}

// Values encodes q as URL query parameters, the inverse of ParseListQuery.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Filter != "" && q.Filter != FilterAll {
		v.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Priority != nil {
		v.Set("priority", strconv.Itoa(int(*q.Priority)))
	}
	if q.Archived != nil {
		v.Set("archived", strconv.FormatBool(*q.Archived))
	}
	return v
}

// wantArchived is the archived state a task must have to be listed.
func (q ListQuery) wantArchived() bool {
	return q.Archived != nil && *q.Archived
}

// Match reports whether t satisfies every predicate of q.
func (q ListQuery) Match(t Task) bool {
	if t.Archived != q.wantArchived() {
		return false
	}
	switch q.Filter {
	case FilterActive:
		if t.Completed {
			return false
		}
	case FilterCompleted:
		if !t.Completed {
			return false
		}
	}
	if q.Category != "" && (t.Category == nil || *t.Category != q.Category) {
		return false
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	return q.matchesSearch(t)
}

// matchesSearch reports whether the search text occurs in t's text or
// category, ignoring case. Case folding covers all of Unicode.
func (q ListQuery) matchesSearch(t Task) bool {
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(t.Text), needle) {
		return true
	}
	return t.Category != nil && strings.Contains(strings.ToLower(*t.Category), needle)
}

// newestFirst orders by creation time descending, newer ids first on ties.
func newestFirst(a, b Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// SortTasks orders list in place according to the sort key.
func SortTasks(list []Task, key string) {
	var less func(a, b Task) bool
	switch key {
	case SortPriority:
		less = func(a, b Task) bool {
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return newestFirst(a, b)
		}
	case SortDueDate:
		less = func(a, b Task) bool {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return newestFirst(a, b)
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			case *a.DueDate != *b.DueDate:
				return *a.DueDate < *b.DueDate
			}
			return newestFirst(a, b)
		}
	case SortText:
		less = func(a, b Task) bool {
			if a.Text != b.Text {
				return a.Text < b.Text
			}
			return a.ID < b.ID
		}
	default:
		less = newestFirst
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
