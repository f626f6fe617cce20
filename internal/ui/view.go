package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"todo-game/internal/tasks"
)

const dateLayout = "2006-01-02"

// isOverdue reports whether t has a due date before today and is still open.
// Due dates that are not YYYY-MM-DD are never overdue.
func isOverdue(t tasks.Task, now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	due, err := time.ParseInLocation(dateLayout, *t.DueDate, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// progress returns the completed share of list in [0, 1].
func progress(list []tasks.Task) float64 {
	if len(list) == 0 {
		return 0
	}
	done := 0
	for _, t := range list {
		if t.Completed {
			done++
		}
	}
	return float64(done) / float64(len(list))
}

func progressBar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return progressFull.Render(strings.Repeat("█", filled)) +
		progressEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) View() string {
	if m.mode == modeGame {
		return m.gameView()
	}
	return m.header() + m.listView() + "\n" + m.helpView()
}

// header renders everything above the list. It always ends in a newline.
func (m Model) header() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" TODO "))
	b.WriteString("  ")
	b.WriteString(m.statsLine())
	b.WriteString("\n")

	ratio := progress(m.todos)
	b.WriteString(progressBar(ratio, 30))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n", ratio*100))
	b.WriteString(m.controlsLine())
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(m.wrap(errorStyle).Render(m.err))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.wrap(helpStyle).Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeCreate:
		b.WriteString(panelStyle.Render(m.form.view()))
		b.WriteString("\n")
	case modeSearch:
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}
	return b.String()
}

// wrap limits s to the terminal width once it is known.
func (m Model) wrap(s lipgloss.Style) lipgloss.Style {
	if m.width > 0 {
		return s.Width(m.width)
	}
	return s
}

// clip cuts a single line at the terminal width so it never wraps.
func (m Model) clip(line string) string {
	if m.width <= 0 {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// listRows is the number of todo rows that fit between the header and
// the help footer, or 0 when the terminal size is not known yet.
func (m Model) listRows() int {
	if m.height <= 0 {
		return 0
	}
	rows := m.height - strings.Count(m.header(), "\n") - lipgloss.Height(m.helpView()) - 1
	if len(m.todos) > rows {
		rows-- // scroll indicator
	}
	return max(rows, 1)
}

// window returns the [start, end) range of n rows to draw so that cursor
// is visible, moving offset as little as possible. rows <= 0 draws all.
func window(offset, cursor, rows, n int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+rows {
		offset = cursor - rows + 1
	}
	offset = min(max(offset, 0), n-rows)
	return offset, offset + rows
}

func (m Model) statsLine() string {
	s := m.stats
	return labelStyle.Render(fmt.Sprintf(
		"total %d | active %d | done %d | high %d | archived %d",
		s.Total, s.Active, s.Completed, s.HighPriority, s.Archived,
	))
}

func (m Model) controlsLine() string {
	category := m.category
	if category == "" {
		category = "all"
	}
	priority := "all"
	if m.priority != nil {
		priority = m.priority.String()
	}
	view := "current"
	if m.showArchived {
		view = "archived"
	}
	line := fmt.Sprintf("filter: %s | sort: %s | category: %s | priority: %s | view: %s",
		m.filter, m.sort, category, priority, view)
	if m.search != "" {
		line += fmt.Sprintf(" | search: %q", m.search)
	}
	return m.wrap(helpStyle).Render(line)
}

func (m Model) listView() string {
	if m.loading && len(m.todos) == 0 {
		return "  Loading...\n"
	}
	if len(m.todos) == 0 {
		if m.showArchived {
			return "  No archived todos.\n"
		}
		return "  Nothing to do. Press n to add a todo.\n"
	}

	now := m.now()
	start, end := window(m.offset, m.cursor, m.listRows(), len(m.todos))
	var b strings.Builder
	for i := start; i < end; i++ {
		t := m.todos[i]
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		row := m.rowView(t, now)
		if m.mode == modeEdit && t.ID == m.editID {
			row = m.editInput.View() + helpStyle.Render("  enter: save | esc: cancel")
		}
		b.WriteString(m.clip(cursor + row))
		b.WriteString("\n")
	}
	if start > 0 || end < len(m.todos) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  rows %d-%d of %d", start+1, end, len(m.todos))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) rowView(t tasks.Task, now time.Time) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	prio := styleForPriority(t.Priority).Render(fmt.Sprintf("%-4s", t.Priority.String()))

	text := t.Text
	switch {
	case m.deleting[t.ID]:
		text = deletingStyle.Render(text + " (deleting)")
	case t.Archived:
		text = archivedStyle.Render(text)
	case t.Completed:
		text = doneStyle.Render(text)
	}

	parts := []string{check, prio, text}
	if t.DueDate != nil {
		if isOverdue(t, now) {
			parts = append(parts, overdueStyle.Render("due "+*t.DueDate+" OVERDUE"))
		} else {
			parts = append(parts, dueStyle.Render("due "+*t.DueDate))
		}
	}
	if t.Category != nil {
		parts = append(parts, categoryStyle.Render("@"+*t.Category))
	}
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = "#" + tag
		}
		parts = append(parts, tagStyle.Render(strings.Join(tags, " ")))
	}
	return strings.Join(parts, " ")
}

func (m Model) helpView() string {
	bindings := m.keys.help()
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return m.wrap(helpStyle).Render(strings.Join(parts, " | "))
}
