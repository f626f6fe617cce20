package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("todo not found")

// ValidationError reports a request that can never succeed as sent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Optional records whether a JSON field was present in a request body
// and whether it was explicitly null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero lets `omitzero` drop fields that were never set.
func (o Optional[T]) IsZero() bool { return !o.Set }

// CreateRequest is the body of POST /todos.
type CreateRequest struct {
	Text     string    `json:"text"`
	Priority *Priority `json:"priority,omitempty"`
	DueDate  *string   `json:"dueDate,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     TagList   `json:"tags,omitempty"`
}

// draft is a validated CreateRequest; stores assign id and createdAt.
type draft struct {
	Text     string
	Priority Priority
	DueDate  *string
	Category *string
	Tags     TagList
}

func (r CreateRequest) normalize() (draft, error) {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return draft{}, invalid("text is required")
	}
	d := draft{
		Text:     text,
		Priority: PriorityMedium,
		DueDate:  optionalString(r.DueDate),
		Category: optionalString(r.Category),
		Tags:     append(TagList{}, r.Tags...),
	}
	if r.Priority != nil {
		if !r.Priority.Valid() {
			return draft{}, invalid("priority must be 0, 1 or 2")
		}
		d.Priority = *r.Priority
	}
	return d, nil
}

// UpdateRequest is the body of PUT /todos/{id}. Only fields present in
// the body are applied.
type UpdateRequest struct {
	Text      Optional[string]   `json:"text,omitzero"`
	Completed Optional[bool]     `json:"completed,omitzero"`
	Priority  Optional[Priority] `json:"priority,omitzero"`
	DueDate   Optional[string]   `json:"dueDate,omitzero"`
	Category  Optional[string]   `json:"category,omitzero"`
	Tags      Optional[TagList]  `json:"tags,omitzero"`
	Archived  Optional[bool]     `json:"archived,omitzero"`
}

// Empty reports whether the request changes nothing.
func (r UpdateRequest) Empty() bool {
	return !r.Text.Set && !r.Completed.Set && !r.Priority.Set && !r.DueDate.Set &&
		!r.Category.Set && !r.Tags.Set && !r.Archived.Set
}

func (r UpdateRequest) validate() error {
	if r.Text.Set && strings.TrimSpace(r.Text.Value) == "" {
		return invalid("text must not be empty")
	}
	if r.Priority.Set && (r.Priority.Null || !r.Priority.Value.Valid()) {
		return invalid("priority must be 0, 1 or 2")
	}
	return nil
}

// apply mutates t with every field present in r. Callers validate first.
func (r UpdateRequest) apply(t *Task) {
	if r.Text.Set {
		t.Text = strings.TrimSpace(r.Text.Value)
	}
	if r.Completed.Set {
		t.Completed = r.Completed.Value
	}
	if r.Priority.Set {
		t.Priority = r.Priority.Value
	}
	if r.DueDate.Set {
		t.DueDate = optionalString(&r.DueDate.Value)
	}
	if r.Category.Set {
		t.Category = optionalString(&r.Category.Value)
	}
	if r.Tags.Set {
		t.Tags = append(TagList{}, r.Tags.Value...)
	}
	if r.Archived.Set {
		t.Archived = r.Archived.Value
	}
}

// BatchAction is a bulk mutation.
type BatchAction string

const (
	ActionComplete   BatchAction = "complete"
	ActionUncomplete BatchAction = "uncomplete"
	ActionDelete     BatchAction = "delete"
	ActionArchive    BatchAction = "archive"
	ActionUnarchive  BatchAction = "unarchive"
)

// BatchRequest is the body of POST /todos/batch. IDs win over Filter
// when both are given.
type BatchRequest struct {
	Action BatchAction `json:"action"`
	IDs    []int       `json:"ids,omitempty"`
	Filter string      `json:"filter,omitempty"`
}

// BatchResult is the response of POST /todos/batch.
type BatchResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (r BatchRequest) validate() error {
	switch r.Action {
	case "":
		return invalid("action is required")
	case ActionComplete, ActionUncomplete, ActionDelete, ActionArchive, ActionUnarchive:
		return nil
	default:
		return invalid("invalid action %q", string(r.Action))
	}
}

// targetsArchived reports which archived state the batch selects from.
func (r BatchRequest) targetsArchived() bool {
	return r.Action == ActionUnarchive
}

// selects reports whether t is part of the batch target set.
func (r BatchRequest) selects(t Task) bool {
	if t.Archived != r.targetsArchived() {
		return false
	}
	if len(r.IDs) > 0 {
		for _, id := range r.IDs {
			if id == t.ID {
				return true
			}
		}
		return false
	}
	switch r.Filter {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return true
}

func batchMessage(n int) string {
	if n == 1 {
		return "1 todo updated"
	}
	return fmt.Sprintf("%d todos updated", n)
}
