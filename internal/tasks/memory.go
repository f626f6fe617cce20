package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps tasks in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu     sync.Mutex
	todos  []Task
	nextID int
	now    func() time.Time
}

// NewMemoryStore returns an empty store whose first id is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (s *MemoryStore) indexOf(id int) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) List(_ context.Context, q ListQuery) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.todos))
	for _, t := range s.todos {
		if q.Match(t) {
			out = append(out, t.clone())
		}
	}
	SortTasks(out, q.Sort)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return s.todos[i].clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, req CreateRequest) (Task, error) {
	d, err := req.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        s.nextID,
		Text:      d.Text,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		Category:  d.Category,
		Tags:      d.Tags,
		CreatedAt: s.now().UTC(),
	}
	s.nextID++
	s.todos = append(s.todos, t)
	return t.clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id int, req UpdateRequest) (Task, error) {
	if err := req.validate(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	req.apply(&s.todos[i])
	return s.todos[i].clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return nil
}

func (s *MemoryStore) Batch(_ context.Context, req BatchRequest) (int, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	kept := s.todos[:0]
	for _, t := range s.todos {
		if !req.selects(t) {
			kept = append(kept, t)
			continue
		}
		count++
		switch req.Action {
		case ActionDelete:
			continue
		case ActionComplete:
			t.Completed = true
		case ActionUncomplete:
			t.Completed = false
		case ActionArchive:
			t.Archived = true
		case ActionUnarchive:
			t.Archived = false
		}
		kept = append(kept, t)
	}
	s.todos = kept
	return count, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	for _, t := range s.todos {
		if t.Archived {
			st.Archived++
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
		if t.Priority == PriorityHigh {
			st.HighPriority++
		}
	}
	return st, nil
}

func (s *MemoryStore) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	out := []string{}
	for _, t := range s.todos {
		if t.Archived || t.Category == nil || *t.Category == "" || seen[*t.Category] {
			continue
		}
		seen[*t.Category] = true
		out = append(out, *t.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
