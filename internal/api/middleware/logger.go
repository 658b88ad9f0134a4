package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"lc_stat/internal/platform/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger stores a request scoped logger in the context and logs every
// request and its response.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			log := base
			if reqID := chiMiddleware.GetReqID(r.Context()); reqID != "" {
				log = log.With(slog.String("request_id", reqID))
			}
			r = r.WithContext(logger.WithLogger(r.Context(), log))

			log.Info("request", requestAttr(r))

			lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lw, r)

			log.Info("response", responseAttr(lw, start))
		})
	}
}

func requestAttr(r *http.Request) slog.Attr {
	return slog.Group("request_info",
		slog.String("method", r.Method),
		slog.String("path", r.URL.String()),
		slog.String("host", r.Host),
		slog.String("user_agent", r.UserAgent()),
		slog.String("ip", r.RemoteAddr),
	)
}

func responseAttr(lw *loggingResponseWriter, start time.Time) slog.Attr {
	return slog.Group("response_info",
		slog.Int("status", lw.statusCode),
		slog.Int("size", lw.size),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := lw.ResponseWriter.Write(b)
	lw.size += size
	return size, err
}

func (lw *loggingResponseWriter) WriteHeader(statusCode int) {
	lw.statusCode = statusCode
	lw.ResponseWriter.WriteHeader(statusCode)
}
