package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/timebank/backend/internal/botframework"
	"github.com/timebank/backend/internal/middleware"
)

// TurnProcessor runs one turn. *botframework.Adapter implements it.
type TurnProcessor interface {
	ProcessActivity(ctx context.Context, a *botframework.Activity, bot botframework.Bot) error
}

// MessagesHandler serves POST /api/messages.
type MessagesHandler struct {
	Adapter TurnProcessor
	Bot     botframework.Bot
	Logger  *slog.Logger
}

// Messages handles one inbound activity. The activity comes from ActivityPeek when that
// middleware ran, otherwise from the body.
func (h *MessagesHandler) Messages(w http.ResponseWriter, r *http.Request) {
	act := middleware.ActivityFromCtx(r.Context())
	if act == nil {
		var a botframework.Activity
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
		act = &a
	}

	if err := h.Adapter.ProcessActivity(r.Context(), act, h.Bot); err != nil {
		h.logger().Error("process activity", "error", err, "conversation_id", act.Conversation.ID)
		http.Error(w, `{"error":"failed to process activity"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *MessagesHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
