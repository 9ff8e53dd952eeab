package middleware

import (
	"net/http"
	"time"

	"github.com/yuzvak/storefront-cart/internal/pkg/generator"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

func NewLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	codeGen := generator.NewCodeGenerator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()

			requestID := r.Header.Get(RequestIDHeader)
			if !generator.ValidSessionID(requestID) {
				requestID = codeGen.GenerateSessionID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			wrw := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrw, r)

			log.WithCorrelationID(requestID).Info("HTTP Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"session_id", r.Header.Get(SessionHeader),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
