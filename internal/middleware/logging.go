package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/facturia/facturia/internal/logging"
)

// maxLoggedBody caps how much of a request body is captured for debug logs.
const maxLoggedBody = 4096

// HTTPLogging logs requests and responses at debug level with sensitive
// fields masked. At other levels it only emits a single info line per
// request with method, path, status, and duration.
func HTTPLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			debug := logger.Enabled(r.Context(), slog.LevelDebug)

			if debug {
				logRequest(logger, r)
			}

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			logger.Info("http request",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"duration_ms", duration.Milliseconds())
		})
	}
}

func logRequest(logger *slog.Logger, r *http.Request) {
	attrs := []any{
		"request_id", GetRequestID(r.Context()),
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	}

	for name, values := range r.Header {
		if len(values) > 0 {
			attrs = append(attrs, "hdr_"+name, logging.MaskHeader(name, values[0]))
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
		if err == nil {
			// Restore the body for the handler
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
			attrs = append(attrs, "body", string(logging.MaskJSONBody(body)))
		}
	}

	logger.Debug("http request detail", attrs...)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}
