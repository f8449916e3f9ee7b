package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/timebank/backend/internal/botframework"
)

type contextKey string

const (
	ctxActivityKey contextKey = "activity"
	ctxClaimsKey   contextKey = "claims"
)

// maxActivityBytes bounds inbound activity bodies.
const maxActivityBytes = 1 << 20

// ActivityFromCtx returns the activity decoded by ActivityPeek, or nil.
func ActivityFromCtx(ctx context.Context) *botframework.Activity {
	a, _ := ctx.Value(ctxActivityKey).(*botframework.Activity)
	return a
}

// WithActivity returns a context carrying the given activity.
func WithActivity(ctx context.Context, a *botframework.Activity) context.Context {
	return context.WithValue(ctx, ctxActivityKey, a)
}

// ActivityPeek decodes the request body as a Bot Framework activity, stores it in the
// request context, then replaces r.Body so downstream handlers can re-read it.
func ActivityPeek(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActivityBytes))
		r.Body.Close()
		if err != nil {
			http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
			return
		}
		// Restore body for the handler.
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		var a botframework.Activity
		if err := json.Unmarshal(bodyBytes, &a); err != nil {
			http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
			return
		}
		if a.Type == "" {
			http.Error(w, `{"error":"activity type is required"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActivity(r.Context(), &a)))
	})
}
