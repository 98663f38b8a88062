// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/prometheus"
)

// statusWriter captures the response status code and byte count.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// RequestLogging logs one line per request and records HTTP metrics. 5xx
// responses log at error level, 4xx at warn. Probe paths are skipped to
// keep the log quiet.
func RequestLogging(logger logging.Logger, metrics *prometheus.Metrics, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)

			if metrics != nil {
				metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).Inc()
				metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path).Observe(elapsed.Seconds())
			}

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", sw.status),
				logging.Int64("bytes", sw.bytes),
				logging.Duration("elapsed", elapsed),
				logging.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case sw.status >= 500:
				logger.Error("http request", fields...)
			case sw.status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
		})
	}
}
