package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"todo-game/internal/analytics"
	"todo-game/internal/logging"
)

// TaskHandler serves the todo endpoints on top of a Store.
type TaskHandler struct {
	Store  Store
	Log    *zap.Logger
	Events *analytics.Recorder
}

func New(store Store, log *zap.Logger, events *analytics.Recorder) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{
		Store:  store,
		Log:    log,
		Events: events,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps store errors onto status codes. Anything that is not a
// validation or lookup failure is a 500 and is logged.
func (h *TaskHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Msg})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: ErrNotFound.Error()})
	default:
		logging.FromContext(r.Context(), h.Log).Error("store error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}
