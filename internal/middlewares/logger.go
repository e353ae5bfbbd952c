package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggerKey carries the request-scoped logger.
type LoggerKey struct{}

// Logger attaches a request-scoped zap logger tagged with a request id and
// logs one line per completed request.
func Logger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := zap.L().With(zap.String("request_id", uuid.New().String()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := context.WithValue(r.Context(), LoggerKey{}, logger)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	}
	return http.HandlerFunc(fn)
}

// GetLogger returns the request-scoped logger, falling back to the global
// one outside the middleware chain.
func GetLogger(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value(LoggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.L()
}
