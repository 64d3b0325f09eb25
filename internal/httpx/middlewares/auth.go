package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/domain"
)

// contextKey is an unexported type for context keys in this package so
// values cannot collide with keys from other packages.
type contextKey string

const payloadKey contextKey = "auth_payload"

// Authenticate verifies the "Authorization: Bearer <token>" header and
// stores the token payload in the request context. Requests without a
// valid token are rejected with 401.
func Authenticate(maker auth.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "authorization header is not provided")
				return
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			payload, err := maker.VerifyToken(fields[1])
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), payloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the admin surface. Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := PayloadFromContext(r.Context())
		if !ok || payload.Role != domain.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden","message":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PayloadFromContext extracts the verified token payload, if any.
func PayloadFromContext(ctx context.Context) (*auth.Payload, bool) {
	payload, ok := ctx.Value(payloadKey).(*auth.Payload)
	return payload, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"` + msg + `"}`))
}
