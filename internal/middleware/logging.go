package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"uav-logchat/flightdesk/internal/logging"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDMiddleware adds a request ID to the context if not present
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestIDMiddleware, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logging writes one structured log line per completed request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lw, r)

		log := logging.WithRequest(GetRequestID(r.Context()), routePattern(r))
		kv := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", lw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", humanize.Bytes(uint64(lw.bytes)),
		}
		if r.ContentLength > 0 {
			kv = append(kv, "request_size", humanize.Bytes(uint64(r.ContentLength)))
		}

		switch {
		case lw.statusCode >= 500:
			log.Errorw("HTTP request completed", kv...)
		case lw.statusCode >= 400:
			log.Warnw("HTTP request completed", kv...)
		default:
			log.Infow("HTTP request completed", kv...)
		}
	})
}
