package metrics

import (
	"net/http"
	"regexp"
	"time"
)

// Path segments that would blow up label cardinality: UUIDs (client,
// project, payment ids), report tokens (64 hex chars), bare numbers.
var (
	uuidSegment    = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	tokenSegment   = regexp.MustCompile(`/[0-9a-f]{32,}`)
	numericSegment = regexp.MustCompile(`/(\d+)`)
)

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Middleware returns an HTTP middleware that records request count and
// latency for each request, with normalized paths as labels.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		startTime := time.Now()

		defer func() {
			duration := time.Since(startTime).Seconds()

			statusCode := recorder.statusCode
			if statusCode == 0 {
				statusCode = http.StatusInternalServerError
			}

			normalizedPath := normalizePath(r.URL.Path)

			statusStr := http.StatusText(statusCode)
			if statusStr == "" {
				statusStr = "UNKNOWN"
			}

			RecordRequest(r.Method, normalizedPath, statusStr)
			RecordRequestDuration(r.Method, normalizedPath, statusStr, duration)

			if err := recover(); err != nil {
				if !recorder.written {
					recorder.statusCode = http.StatusInternalServerError
					recorder.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// normalizePath replaces variable path segments with placeholders so
// metric labels stay bounded.
// Examples:
//
//	/api/clients/8f14e45f-... -> /api/clients/:id
//	/report/ab34...64hex      -> /report/:token
//	/api/logs/42              -> /api/logs/:id
func normalizePath(path string) string {
	path = uuidSegment.ReplaceAllString(path, "/:id")
	path = tokenSegment.ReplaceAllString(path, "/:token")
	path = numericSegment.ReplaceAllString(path, "/:id")
	return path
}
