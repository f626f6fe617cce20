package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"todo-game/internal/analytics"
	"todo-game/internal/config"
	"todo-game/internal/db"
	"todo-game/internal/logging"
	"todo-game/internal/tasks"
)

// OpenStore builds the store selected by cfg.Store.Driver. SQL stores
// are migrated before they are returned.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (tasks.Store, error) {
	if cfg.Store.Driver == config.DriverMemory {
		log.Info("using in-memory store")
		return tasks.NewMemoryStore(), nil
	}

	d, err := db.DialectFor(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	dbx, err := db.Connect(ctx, d, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", d.Name, err)
	}
	if err := db.Migrate(ctx, dbx, d, log); err != nil {
		_ = dbx.Close()
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", d.Name))
	return tasks.NewSQLStore(dbx, d), nil
}

// NewRouter wires middleware, the todo routes (at the root and under
// /api), health, metrics and client event ingestion.
func NewRouter(cfg *config.Config, store tasks.Store, log *zap.Logger, rec *analytics.Recorder) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(rec.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, rec.Handler())
	}

	h := tasks.New(store, log, rec)
	api := func(r chi.Router) {
		h.Routes(r)
		r.Post("/events", rec.EventsHandler())
	}
	api(r)
	r.Route("/api", api)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "X-Platform", "X-App-Version", "X-Session-Id"},
		ExposedHeaders: []string{logging.TraceHeader},
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      NewRouter(cfg, store, log, analytics.NewRecorder("todo")),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("api server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("api server stopped")
	return nil
}
