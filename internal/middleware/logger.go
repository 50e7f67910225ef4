package middleware

import (
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/logging"
)

// Logger attaches a request-scoped zap logger to the context and emits one
// structured entry per request.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	base = logging.OrNop(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			reqLogger := base
			if rid := chiMid.GetReqID(ctx); rid != "" {
				ctx = WithRequestID(ctx, rid)
				reqLogger = base.With(zap.String("request_id", rid))
			}
			ctx = logging.WithLogger(ctx, reqLogger)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			reqLogger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_ip", clientIP(r)),
				zap.Bool("htmx", r.Header.Get("HX-Request") == "true"),
			)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
