// Package ui is the terminal client of the todo API, built on Bubble Tea.
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"todo-game/internal/analytics"
	"todo-game/internal/client"
	"todo-game/internal/game"
	"todo-game/internal/tasks"
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeEdit
	modeSearch
	modeGame
)

var (
	filterCycle = []string{tasks.FilterAll, tasks.FilterActive, tasks.FilterCompleted}
	sortCycle   = []string{tasks.SortDate, tasks.SortPriority, tasks.SortDueDate, tasks.SortText}
)

// Banner texts. Details go to the log.
const (
	errLoad   = "Failed to load todos"
	errCreate = "Failed to add todo"
	errUpdate = "Failed to update todo"
	errDelete = "Failed to delete todo"
	errBatch  = "Batch action failed"
)

// Model is the root Bubble Tea model of the client.
type Model struct {
	api  API
	log  *zap.Logger
	keys KeyMap
	now  func() time.Time

	// List query state.
	filter       string
	sort         string
	search       string
	category     string
	priority     *tasks.Priority
	showArchived bool

	todos      []tasks.Task
	stats      tasks.Stats
	categories []string
	cursor     int
	offset     int // first visible row
	loading    bool
	listSeq    int

	err    string
	notice string

	mode        mode
	form        createForm
	editInput   textinput.Model
	editID      int
	searchInput textinput.Model
	deleting    map[int]bool

	game     *game.Engine
	gameSeq  int
	gameOnly bool // closing the game quits the program

	width  int
	height int
}

// New returns a model that loads its data from api on Init.
func New(api API, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	search := newInput("search text or category", 80)
	search.Prompt = "/ "
	edit := newInput("", 200)
	return Model{
		api:         api,
		log:         log,
		keys:        DefaultKeyMap,
		now:         time.Now,
		filter:      tasks.FilterAll,
		sort:        tasks.SortDate,
		loading:     true,
		listSeq:     1,
		form:        newCreateForm(),
		editInput:   edit,
		searchInput: search,
		deleting:    make(map[int]bool),
		game:        game.New(game.DefaultConfig()),
	}
}

// NewGame returns a model that opens straight into the minigame and
// quits when it is closed.
func NewGame(api API, log *zap.Logger) Model {
	m := New(api, log)
	m.mode = modeGame
	m.gameOnly = true
	return m
}

// Query is the list query matching the current filter controls.
func (m Model) Query() tasks.ListQuery {
	q := tasks.ListQuery{
		Filter:   m.filter,
		Sort:     m.sort,
		Search:   m.search,
		Category: m.category,
		Priority: m.priority,
	}
	if m.showArchived {
		archived := true
		q.Archived = &archived
	}
	return q
}

// Todos returns the rows currently shown.
func (m Model) Todos() []tasks.Task { return m.todos }

// Err returns the error banner text, or "".
func (m Model) Err() string { return m.err }

func (m Model) Init() tea.Cmd {
	if m.gameOnly {
		return nil
	}
	return tea.Batch(
		fetchTodos(m.api, m.Query(), m.listSeq),
		fetchStats(m.api),
		fetchCategories(m.api),
		sendEvent(m.api, analytics.ClientEvent{Name: analytics.AppOpened, From: "cli"}),
	)
}

// reload fetches list, stats and categories for the current query.
func (m *Model) reload() tea.Cmd {
	m.listSeq++
	m.loading = true
	return tea.Batch(
		fetchTodos(m.api, m.Query(), m.listSeq),
		fetchStats(m.api),
		fetchCategories(m.api),
	)
}

func (m *Model) fail(banner string, err error) {
	m.err = banner
	m.log.Error(strings.ToLower(banner), zap.Error(err))
}

func (m Model) selected() (tasks.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return tasks.Task{}, false
	}
	return m.todos[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) replace(t tasks.Task) {
	for i := range m.todos {
		if m.todos[i].ID == t.ID {
			m.todos[i] = t
			return
		}
	}
}

func (m *Model) remove(id int) {
	for i := range m.todos {
		if m.todos[i].ID == id {
			m.todos = append(m.todos[:i], m.todos[i+1:]...)
			break
		}
	}
	m.clampCursor()
}

// Update applies msg and then scrolls the list so the cursor row stays
// on screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.offset, _ = window(nm.offset, nm.cursor, nm.listRows(), len(nm.todos))
		return nm, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosLoadedMsg:
		if msg.seq != m.listSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.fail(errLoad, msg.err)
			return m, nil
		}
		m.todos = msg.todos
		m.clampCursor()
		return m, nil

	case statsLoadedMsg:
		if msg.err != nil {
			m.log.Error("fetch stats", zap.Error(msg.err))
			return m, nil
		}
		m.stats = msg.stats
		return m, nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.log.Error("fetch categories", zap.Error(msg.err))
			return m, nil
		}
		m.categories = msg.categories
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.fail(errCreate, msg.err)
			return m, nil
		}
		m.todos = append([]tasks.Task{msg.task}, m.todos...)
		m.cursor = 0
		m.form = newCreateForm()
		return m, tea.Batch(fetchStats(m.api), fetchCategories(m.api))

	case updatedMsg:
		if msg.err != nil {
			m.fail(errUpdate, msg.err)
			return m, nil
		}
		m.replace(msg.task)
		return m, fetchStats(m.api)

	case deleteReadyMsg:
		if !m.deleting[msg.id] {
			return m, nil
		}
		return m, deleteTodo(m.api, msg.id)

	case deletedMsg:
		delete(m.deleting, msg.id)
		if msg.err != nil && !client.IsNotFound(msg.err) {
			m.fail(errDelete, msg.err)
			return m, nil
		}
		m.remove(msg.id)
		return m, fetchStats(m.api)

	case batchDoneMsg:
		if msg.err != nil {
			m.fail(errBatch, msg.err)
			return m, nil
		}
		m.notice = msg.result.Message
		return m, m.reload()

	case eventSentMsg:
		if msg.err != nil {
			m.log.Debug("send event", zap.Error(msg.err))
		}
		return m, nil

	case gameTickMsg:
		return m.updateGameTick(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeCreate:
			return m.updateCreate(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeGame:
			return m.updateGame(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.mode = modeCreate
		cmd := m.form.setFocus(fieldText)
		return m, tea.Batch(cmd, textinput.Blink)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Filter):
		m.filter = next(filterCycle, m.filter)
		return m, m.reload()

	case key.Matches(msg, m.keys.Sort):
		m.sort = next(sortCycle, m.sort)
		return m, m.reload()

	case key.Matches(msg, m.keys.Category):
		m.category = next(append([]string{""}, m.categories...), m.category)
		return m, m.reload()

	case key.Matches(msg, m.keys.PriorityView):
		m.priority = nextPriority(m.priority)
		return m, m.reload()

	case key.Matches(msg, m.keys.ShowArchived):
		m.showArchived = !m.showArchived
		m.cursor = 0
		return m, m.reload()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.CompleteAll):
		return m.batch(tasks.BatchRequest{Action: tasks.ActionComplete, Filter: tasks.FilterActive})

	case key.Matches(msg, m.keys.DeleteCompleted):
		return m.batch(tasks.BatchRequest{Action: tasks.ActionDelete, Filter: tasks.FilterCompleted})

	case key.Matches(msg, m.keys.ArchiveDone):
		return m.batch(tasks.BatchRequest{Action: tasks.ActionArchive, Filter: tasks.FilterCompleted})

	case key.Matches(msg, m.keys.Game):
		m.mode = modeGame
		m.game.Reset()
		return m, nil
	}

	t, ok := m.selected()
	if !ok || m.deleting[t.ID] {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.err = ""
		return m, updateTodo(m.api, t.ID, tasks.UpdateRequest{Completed: tasks.Some(!t.Completed)})

	case key.Matches(msg, m.keys.Archive):
		m.err = ""
		return m, updateTodo(m.api, t.ID, tasks.UpdateRequest{Archived: tasks.Some(!t.Archived)})

	case key.Matches(msg, m.keys.Priority):
		m.err = ""
		p := (t.Priority + 1) % 3
		return m, updateTodo(m.api, t.ID, tasks.UpdateRequest{Priority: tasks.Some(p)})

	case key.Matches(msg, m.keys.Edit):
		m.mode = modeEdit
		m.editID = t.ID
		m.editInput.SetValue(t.Text)
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()

	case key.Matches(msg, m.keys.Delete):
		m.err = ""
		m.deleting[t.ID] = true
		return m, scheduleDelete(t.ID)
	}
	return m, nil
}

func (m Model) batch(req tasks.BatchRequest) (tea.Model, tea.Cmd) {
	m.err = ""
	m.notice = ""
	return m, runBatch(m.api, req)
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "enter":
		if !m.form.valid() {
			return m, nil
		}
		m.mode = modeList
		m.err = ""
		return m, createTodo(m.api, m.form.request())
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// updateEdit handles inline editing. Saving sends the new text only when
// it is non-empty and differs from the current text.
func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.editInput.Blur()
		return m, nil
	case "enter":
		m.mode = modeList
		m.editInput.Blur()
		text := strings.TrimSpace(m.editInput.Value())
		for _, t := range m.todos {
			if t.ID != m.editID {
				continue
			}
			if text == "" || text == t.Text {
				return m, nil
			}
			m.err = ""
			return m, updateTodo(m.api, t.ID, tasks.UpdateRequest{Text: tasks.Some(text)})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

// updateSearch re-queries on every change of the search text.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.mode = modeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		if m.search == "" {
			return m, nil
		}
		m.search = ""
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if v := m.searchInput.Value(); v != m.search {
		m.search = v
		m.cursor = 0
		return m, tea.Batch(cmd, m.reload())
	}
	return m, cmd
}

func next(cycle []string, cur string) string {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// nextPriority cycles all → high → medium → low → all.
func nextPriority(p *tasks.Priority) *tasks.Priority {
	var n tasks.Priority
	switch {
	case p == nil:
		n = tasks.PriorityHigh
	case *p == tasks.PriorityLow:
		return nil
	default:
		n = *p - 1
	}
	return &n
}
