package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/timebank/backend/internal/auth"
)

// TokenValidator is the interface used by BotAuth.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// BotAuth authenticates requests from the Bot Framework channel service. The bearer token
// must validate, and its serviceurl claim must match the serviceUrl of the activity set by
// ActivityPeek, which must run first.
func BotAuth(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				log.Warn("rejected channel token", "error", err)
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			act := ActivityFromCtx(r.Context())
			if act == nil || !sameServiceURL(claims.ServiceURL, act.ServiceURL) {
				log.Warn("serviceurl claim mismatch", "claim", claims.ServiceURL)
				http.Error(w, `{"error":"serviceurl mismatch"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromCtx returns the validated token claims or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*auth.Claims)
	return c
}

func sameServiceURL(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(b, "/"))
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
