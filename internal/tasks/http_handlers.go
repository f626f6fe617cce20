package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todo-game/internal/analytics"
)

// Routes registers the todo endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/todos", h.List)
	r.Post("/todos", h.Create)
	r.Post("/todos/batch", h.Batch)
	r.Put("/todos/{id}", h.Update)
	r.Patch("/todos/{id}", h.Update)
	r.Delete("/todos/{id}", h.Delete)
	r.Get("/stats", h.Stats)
	r.Get("/categories", h.Categories)
}

// todoID reads the {id} path parameter. A non-numeric id names no todo.
func todoID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context(), ParseListQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *TaskHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Store.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	t, err := h.Store.Create(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Events.Log(r, analytics.TaskCreated)
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var body UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	t, err := h.Store.Update(r.Context(), id, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Events.Log(r, analytics.TaskUpdated)
	if body.Completed.Set {
		if t.Completed {
			h.Events.Log(r, analytics.TaskCompleted)
		} else {
			h.Events.Log(r, analytics.TaskUncompleted)
		}
	}
	if body.Archived.Set {
		if t.Archived {
			h.Events.Log(r, analytics.TaskArchived)
		} else {
			h.Events.Log(r, analytics.TaskUnarchived)
		}
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Events.Log(r, analytics.TaskDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

func (h *TaskHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	n, err := h.Store.Batch(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Events.LogBatch(r, string(body.Action), n)
	writeJSON(w, http.StatusOK, BatchResult{Message: batchMessage(n), Count: n})
}
