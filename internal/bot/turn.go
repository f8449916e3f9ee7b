package bot

import (
	"context"

	"github.com/timebank/backend/internal/botframework"
	"github.com/timebank/backend/internal/cards"
)

// TurnHandler adapts Handler to the transport. Only message activities are commands;
// everything else is acknowledged without a reply.
type TurnHandler struct {
	Handler *Handler
	// AllowChannelIDFallback uses from.id when the channel sends no AAD object id, as the
	// emulator does. Never enable in production.
	AllowChannelIDFallback bool
}

var _ botframework.Bot = (*TurnHandler)(nil)

// OnTurn implements botframework.Bot.
func (t *TurnHandler) OnTurn(ctx context.Context, tc *botframework.TurnContext) error {
	a := tc.Activity
	if a.Type != botframework.TypeMessage {
		return nil
	}
	userID := a.From.AADObjectID
	if userID == "" && t.AllowChannelIDFallback {
		userID = a.From.ID
	}

	replies, err := t.Handler.Handle(ctx, Message{
		UserID:   userID,
		UserName: a.From.Name,
		Text:     botframework.TextWithoutMentions(a),
	})
	if err != nil {
		return err
	}
	for _, r := range replies {
		var out *botframework.Activity
		if r.Card != nil {
			out = botframework.NewAttachmentReply(a, cards.ContentType, r.Card)
		} else {
			out = botframework.NewTextReply(a, r.Text)
		}
		if err := tc.SendActivity(ctx, out); err != nil {
			return err
		}
	}
	return nil
}
