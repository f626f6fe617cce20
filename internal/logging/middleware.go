package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// TraceHeader carries the trace id back to the caller.
const TraceHeader = "X-Trace-Id"

// Middleware attaches a trace id to each request and writes one access
// log line after the handler returns. It reuses chi's request id when
// middleware.RequestID ran first.
func Middleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(TraceHeader)
			if id == "" {
				id = middleware.GetReqID(r.Context())
			}
			if id == "" {
				id = NewTraceID()
			}
			w.Header().Set(TraceHeader, id)
			r = r.WithContext(WithTraceID(r.Context(), id))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http_access",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("dur", time.Since(start)),
				zap.String("trace_id", id),
			)
		})
	}
}
