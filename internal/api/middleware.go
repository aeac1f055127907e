package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pinodelabs/pinode/internal/auth"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
)

// requestLogger logs and counts every request by its route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		slog.Info("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// authenticate requires a valid bearer token and stores its subject in the
// request context.
func authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, r, unauthorized("missing bearer token"))
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				slog.Debug("token rejected", "error", err)
				writeError(w, r, unauthorized("invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// requireAdmin lets through callers whose account carries the admin flag.
func requireAdmin(users UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				writeError(w, r, unauthorized("missing bearer token"))
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if domain.KindOf(err) == domain.KindNotFound {
					writeError(w, r, unauthorized("unknown user"))
					return
				}
				writeError(w, r, err)
				return
			}
			if !user.IsAdmin {
				writeError(w, r, forbidden(domain.ErrNotAdmin.Error()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
