package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yuzvak/storefront-cart/internal/infrastructure/api"
)

const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// NewSessionMiddleware puts the shopper's session id on the request context
// and forwards their bearer token to calls made against the sweets API.
func NewSessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), sessionKey{}, strings.TrimSpace(r.Header.Get(SessionHeader)))

			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				ctx = api.WithToken(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
