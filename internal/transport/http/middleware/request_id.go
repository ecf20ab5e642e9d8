package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"hrdesk/internal/platform/requestctx"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// RequestID tags every request with an identifier, honoring one supplied
// by an upstream proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := requestctx.Set(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.ID(ctx)
}
