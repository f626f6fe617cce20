package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo-game/internal/analytics"
	"todo-game/internal/tasks"
)

// API is the subset of the REST client the UI drives.
type API interface {
	List(ctx context.Context, q tasks.ListQuery) ([]tasks.Task, error)
	Stats(ctx context.Context) (tasks.Stats, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, req tasks.CreateRequest) (tasks.Task, error)
	Update(ctx context.Context, id int, req tasks.UpdateRequest) (tasks.Task, error)
	Delete(ctx context.Context, id int) error
	Batch(ctx context.Context, req tasks.BatchRequest) (tasks.BatchResult, error)
	SendEvent(ctx context.Context, ev analytics.ClientEvent) error
}

// deleteDelay is how long a row shows as deleting before the request goes out.
const deleteDelay = 300 * time.Millisecond

// requestTimeout bounds every API call issued by a command.
const requestTimeout = 10 * time.Second

// todosLoadedMsg answers the list request numbered seq; older answers
// are dropped.
type todosLoadedMsg struct {
	seq   int
	todos []tasks.Task
	err   error
}

type statsLoadedMsg struct {
	stats tasks.Stats
	err   error
}

type categoriesLoadedMsg struct {
	categories []string
	err        error
}

type createdMsg struct {
	task tasks.Task
	err  error
}

type updatedMsg struct {
	task tasks.Task
	err  error
}

type deleteReadyMsg struct {
	id int
}

type deletedMsg struct {
	id  int
	err error
}

type batchDoneMsg struct {
	result tasks.BatchResult
	err    error
}

// eventSentMsg is the result of a fire-and-forget analytics call.
type eventSentMsg struct {
	err error
}

func fetchTodos(api API, q tasks.ListQuery, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := api.List(ctx, q)
		return todosLoadedMsg{seq: seq, todos: list, err: err}
	}
}

func fetchStats(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := api.Stats(ctx)
		return statsLoadedMsg{stats: st, err: err}
	}
}

func fetchCategories(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cats, err := api.Categories(ctx)
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

func createTodo(api API, req tasks.CreateRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := api.Create(ctx, req)
		return createdMsg{task: t, err: err}
	}
}

func updateTodo(api API, id int, req tasks.UpdateRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := api.Update(ctx, id, req)
		return updatedMsg{task: t, err: err}
	}
}

func scheduleDelete(id int) tea.Cmd {
	return tea.Tick(deleteDelay, func(time.Time) tea.Msg {
		return deleteReadyMsg{id: id}
	})
}

func deleteTodo(api API, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

func runBatch(api API, req tasks.BatchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := api.Batch(ctx, req)
		return batchDoneMsg{result: res, err: err}
	}
}

func sendEvent(api API, ev analytics.ClientEvent) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return eventSentMsg{err: api.SendEvent(ctx, ev)}
	}
}
