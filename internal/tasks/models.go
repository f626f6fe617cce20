package tasks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority is the importance of a task: 0 low, 1 medium, 2 high.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MED"
	case PriorityLow:
		return "LOW"
	default:
		return strconv.Itoa(int(p))
	}
}

// UnmarshalJSON accepts both 2 and "2"; clients built on form inputs
// tend to send strings.
func (p *Priority) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("priority: %q is not an integer", s)
	}
	*p = Priority(n)
	return nil
}

// TagList is an ordered list of tags that is never null on the wire.
// Anything that is not an array of strings decodes to an empty list.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var v []string
	if err := json.Unmarshal(data, &v); err != nil || v == nil {
		*t = TagList{}
		return nil
	}
	*t = v
	return nil
}

func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Task is a single to-do record.
type Task struct {
	ID        int       `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Completed bool      `json:"completed" yaml:"completed"`
	Priority  Priority  `json:"priority" yaml:"priority"`
	DueDate   *string   `json:"dueDate" yaml:"dueDate"`
	Category  *string   `json:"category" yaml:"category"`
	Tags      TagList   `json:"tags" yaml:"tags"`
	Archived  bool      `json:"archived" yaml:"archived"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Stats summarises the non-archived tasks plus the archived count.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Active       int `json:"active"`
	HighPriority int `json:"highPriority"`
	Archived     int `json:"archived"`
}

// clone returns a copy that shares no memory with t.
func (t Task) clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Category != nil {
		cat := *t.Category
		c.Category = &cat
	}
	c.Tags = append(TagList{}, t.Tags...)
	return c
}

// optionalString maps blank strings to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
