package analytics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Envelope is what we attach to every event.
type Envelope struct {
	Platform   string
	AppVersion string
	SessionID  string
}

var knownPlatforms = map[string]bool{
	"web":     true,
	"tui":     true,
	"ios":     true,
	"android": true,
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	if !knownPlatforms[platform] {
		platform = "unknown"
	}
	return Envelope{
		Platform:   platform,
		AppVersion: strings.TrimSpace(r.Header.Get("X-App-Version")),
		SessionID:  strings.TrimSpace(r.Header.Get("X-Session-Id")),
	}
}

// Task lifecycle events.
const (
	TaskCreated     = "task_created"
	TaskUpdated     = "task_updated"
	TaskCompleted   = "task_completed"
	TaskUncompleted = "task_uncompleted"
	TaskArchived    = "task_archived"
	TaskUnarchived  = "task_unarchived"
	TaskDeleted     = "task_deleted"
	BatchApplied    = "batch_applied"
)

// Recorder counts events and HTTP traffic into a prometheus registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	batched    *prometheus.CounterVec
	gameScores prometheus.Histogram
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	opens      *prometheus.CounterVec
	sessions   prometheus.Counter

	mu   sync.Mutex
	seen map[string]struct{}
}

// maxSessions bounds the set of remembered session ids. The set starts
// over once it is full, so a long-lived server may count a session twice.
const maxSessions = 10000

// NewRecorder registers the todo metrics under namespace on a fresh registry.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Task lifecycle and client events.",
		}, []string{"event", "platform"}),
		batched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_tasks_total",
			Help:      "Tasks affected by batch actions.",
		}, []string{"action"}),
		gameScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_score",
			Help:      "Final minigame scores reported by clients.",
			Buckets:   []float64{0, 5, 15, 30, 50, 100},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "app_opens_total",
			Help:      "Client app launches by platform and version.",
		}, []string{"platform", "app_version"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Distinct client sessions seen.",
		}),
		seen: make(map[string]struct{}),
	}
	reg.MustRegister(r.events, r.batched, r.gameScores, r.requests, r.latency, r.opens, r.sessions)
	return r
}

// Log counts one event for the request's platform. App launches are
// also counted by version, and new session ids are counted once.
func (rec *Recorder) Log(r *http.Request, event string) {
	if rec == nil || event == "" {
		return
	}
	env := FromRequest(r)
	rec.events.WithLabelValues(event, env.Platform).Inc()
	if event == AppOpened {
		rec.opens.WithLabelValues(env.Platform, versionLabel(env.AppVersion)).Inc()
	}
	rec.trackSession(env.SessionID)
}

func (rec *Recorder) trackSession(id string) {
	if id == "" {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.seen[id]; ok {
		return
	}
	if len(rec.seen) >= maxSessions {
		clear(rec.seen)
	}
	rec.seen[id] = struct{}{}
	rec.sessions.Inc()
}

// versionLabel keeps the app_version label short and never empty.
func versionLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	if len(v) > 32 {
		return v[:32]
	}
	return v
}

// LogBatch counts a batch action and the number of tasks it touched.
func (rec *Recorder) LogBatch(r *http.Request, action string, affected int) {
	if rec == nil {
		return
	}
	rec.Log(r, BatchApplied)
	rec.batched.WithLabelValues(action).Add(float64(affected))
}

// Handler serves the registry in the prometheus text format.
func (rec *Recorder) Handler() http.Handler {
	if rec == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(rec.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (rec *Recorder) Registry() *prometheus.Registry {
	if rec == nil {
		return nil
	}
	return rec.registry
}
