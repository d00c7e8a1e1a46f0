package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// Timeout навешивает deadline на запрос, если его ещё нет, и добавляет
// бюджет запроса в request-scoped логгер (сбои апстрима видны вместе с ним).
// Значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r) // уважаем существующий deadline.
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			ctx = logctx.With(ctx, slog.Duration("budget", d))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
