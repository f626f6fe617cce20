package analytics

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Client-reported events accepted by POST /events.
const (
	AppOpened   = "app_opened"
	GameStarted = "game_started"
	GameOver    = "game_over"
)

var clientEvents = map[string]bool{
	AppOpened:   true,
	GameStarted: true,
	GameOver:    true,
}

// ClientEvent is the body of POST /events.
type ClientEvent struct {
	Name  string `json:"name"`
	Score *int   `json:"score,omitempty"` // game_over only
	From  string `json:"from,omitempty"`  // app_opened: cli/deeplink/unknown
}

// EventsHandler ingests client events from the whitelist.
func (rec *Recorder) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ClientEvent
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if !clientEvents[body.Name] {
			writeError(w, http.StatusBadRequest, "unknown event")
			return
		}
		if body.Name == GameOver {
			if body.Score == nil || *body.Score < 0 {
				writeError(w, http.StatusBadRequest, "game_over needs a non-negative score")
				return
			}
			if rec != nil {
				rec.gameScores.Observe(float64(*body.Score))
			}
		}

		rec.Log(r, body.Name)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// Middleware records request counts and latency per chi route pattern.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	if rec == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		rec.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		rec.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
