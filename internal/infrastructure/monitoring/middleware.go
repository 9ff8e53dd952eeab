package monitoring

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// HTTPMetricsMiddleware labels requests with the matched route's name so
// item ids in paths never become label values.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := TimeHTTPRequest(handlerName(r), r.Method)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		done(strconv.Itoa(wrapped.statusCode))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handlerName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		return "unknown"
	}
	return strings.Split(path, "/")[0]
}
