package middleware

import (
	"net/http"
	"time"

	"app/internal/logger"

	"github.com/google/uuid"
)

// LoggerMiddleware tags each request with an id and logs it after it is
// served.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		logger := logger.New()
		logger.Debug().
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msgf("%s %s", r.Method, r.URL.RequestURI())
	})
}
