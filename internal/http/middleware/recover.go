package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/upsc-blog/internal/errors"
	logctx "github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// ErrorWriter отрисовывает ответ об ошибке.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Recover перехватывает panic, конвертирует в 500/internal и пишет ответ через onError
// (nil -> apierrors.WriteError). Детали паники не утекают на клиент.
func Recover(onError ErrorWriter) Middleware {
	if onError == nil {
		onError = apierrors.WriteError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					// Безопасно логируем факт паники; детали наружу не отдаем.
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					onError(w, r, fmt.Errorf("internal"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
