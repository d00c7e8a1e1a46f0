package middleware

import (
	"context"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/upsc-blog/internal/wordpress"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если есть;
//  2. иначе генерирует id из UUIDv4 в hex без дефисов (32 символа);
//  3. кладёт id в Response Header, Request Header (для удобства) и в контекст
//     по ключу wordpress.CtxRequestID (его прокидывает в апстрим клиент контент-API).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = genID()
				// добавим в запрос — чтобы errors.WriteError мог его забрать.
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), wordpress.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func genID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
