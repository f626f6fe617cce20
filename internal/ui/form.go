package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo-game/internal/tasks"
)

// Create form fields, in tab order.
const (
	fieldText = iota
	fieldPriority
	fieldDueDate
	fieldCategory
	fieldTags
	fieldCount
)

// createForm collects the fields of a new todo. The priority field is a
// selector; the others are text inputs.
type createForm struct {
	text     textinput.Model
	dueDate  textinput.Model
	category textinput.Model
	tags     textinput.Model
	priority tasks.Priority
	focus    int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	return ti
}

func newCreateForm() createForm {
	f := createForm{
		text:     newInput("What needs to be done?", 200),
		dueDate:  newInput("YYYY-MM-DD", 10),
		category: newInput("work, home, ...", 40),
		tags:     newInput("comma, separated", 120),
		priority: tasks.PriorityMedium,
	}
	f.text.Focus()
	return f
}

// splitTags parses a comma-separated tag list, dropping blanks.
func splitTags(s string) tasks.TagList {
	out := tasks.TagList{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// request builds the create request; the server validates it.
func (f createForm) request() tasks.CreateRequest {
	p := f.priority
	return tasks.CreateRequest{
		Text:     strings.TrimSpace(f.text.Value()),
		Priority: &p,
		DueDate:  optional(f.dueDate.Value()),
		Category: optional(f.category.Value()),
		Tags:     splitTags(f.tags.Value()),
	}
}

// valid reports whether the form may be submitted.
func (f createForm) valid() bool {
	return strings.TrimSpace(f.text.Value()) != ""
}

func (f *createForm) input(field int) *textinput.Model {
	switch field {
	case fieldText:
		return &f.text
	case fieldDueDate:
		return &f.dueDate
	case fieldCategory:
		return &f.category
	case fieldTags:
		return &f.tags
	}
	return nil
}

func (f *createForm) setFocus(field int) tea.Cmd {
	for i := 0; i < fieldCount; i++ {
		if in := f.input(i); in != nil {
			in.Blur()
		}
	}
	f.focus = (field + fieldCount) % fieldCount
	if in := f.input(f.focus); in != nil {
		return in.Focus()
	}
	return nil
}

func (f createForm) update(msg tea.KeyMsg) (createForm, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		cmd := f.setFocus(f.focus + 1)
		return f, cmd
	case "shift+tab", "up":
		cmd := f.setFocus(f.focus - 1)
		return f, cmd
	}

	if f.focus == fieldPriority {
		switch msg.String() {
		case "left", "h":
			if f.priority > tasks.PriorityLow {
				f.priority--
			}
		case "right", "l":
			if f.priority < tasks.PriorityHigh {
				f.priority++
			}
		case "0", "1", "2":
			f.priority = tasks.Priority(msg.String()[0] - '0')
		}
		return f, nil
	}

	in := f.input(f.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return f, cmd
}

func (f createForm) view() string {
	label := func(field int, name string) string {
		if f.focus == field {
			return focusedStyle.Render(fmt.Sprintf("> %-9s", name))
		}
		return labelStyle.Render(fmt.Sprintf("  %-9s", name))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("New todo"))
	b.WriteString("\n")
	b.WriteString(label(fieldText, "Text") + f.text.View() + "\n")
	b.WriteString(label(fieldPriority, "Priority") + priorityPicker(f.priority) + "\n")
	b.WriteString(label(fieldDueDate, "Due") + f.dueDate.View() + "\n")
	b.WriteString(label(fieldCategory, "Category") + f.category.View() + "\n")
	b.WriteString(label(fieldTags, "Tags") + f.tags.View() + "\n")
	b.WriteString(helpStyle.Render("tab: next field | ←/→: priority | enter: add | esc: cancel"))
	return b.String()
}

func priorityPicker(selected tasks.Priority) string {
	parts := make([]string, 0, 3)
	for _, p := range []tasks.Priority{tasks.PriorityLow, tasks.PriorityMedium, tasks.PriorityHigh} {
		name := p.String()
		if p == selected {
			parts = append(parts, styleForPriority(p).Render("["+name+"]"))
		} else {
			parts = append(parts, labelStyle.Render(" "+name+" "))
		}
	}
	return strings.Join(parts, " ")
}
