package botframework

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/timebank/backend/internal/metrics"
)

// GenericErrorText is what a user sees when a turn fails.
const GenericErrorText = "An error occurred. Please try again later."

// TurnContext is one inbound activity and the replies sent during its turn.
type TurnContext struct {
	Activity *Activity

	sender Sender
	sent   []*Activity
}

// NewTurnContext returns a turn for a over sender. Exposed for tests of turn logic.
func NewTurnContext(a *Activity, sender Sender) *TurnContext {
	return &TurnContext{Activity: a, sender: sender}
}

// SendActivity delivers reply and records it.
func (tc *TurnContext) SendActivity(ctx context.Context, reply *Activity) error {
	if err := tc.sender.Send(ctx, tc.Activity, reply); err != nil {
		return err
	}
	tc.sent = append(tc.sent, reply)
	return nil
}

// SendText sends a plain-text reply.
func (tc *TurnContext) SendText(ctx context.Context, text string) error {
	return tc.SendActivity(ctx, NewTextReply(tc.Activity, text))
}

// Sent returns the replies delivered so far.
func (tc *TurnContext) Sent() []*Activity { return tc.sent }

// Bot runs the logic of one turn.
type Bot interface {
	OnTurn(ctx context.Context, tc *TurnContext) error
}

// BotFunc adapts a function to Bot.
type BotFunc func(ctx context.Context, tc *TurnContext) error

func (f BotFunc) OnTurn(ctx context.Context, tc *TurnContext) error { return f(ctx, tc) }

// Adapter runs turns and converts a failing turn into a trace activity plus a generic
// message to the user.
type Adapter struct {
	sender  Sender
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewAdapter(sender Sender, log *slog.Logger, m *metrics.Metrics) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{sender: sender, log: log, metrics: m}
}

// ProcessActivity runs bot for a. A non-nil error means the turn failed and the user could
// not be told.
func (a *Adapter) ProcessActivity(ctx context.Context, act *Activity, bot Bot) error {
	start := time.Now()
	defer func() { a.metrics.ObserveTurn(time.Since(start).Seconds()) }()

	tc := NewTurnContext(act, a.sender)
	err := bot.OnTurn(ctx, tc)
	if err == nil {
		return nil
	}
	return a.onTurnError(ctx, tc, err)
}

func (a *Adapter) onTurnError(ctx context.Context, tc *TurnContext, turnErr error) error {
	a.log.Error("turn failed",
		"error", turnErr,
		"conversation_id", tc.Activity.Conversation.ID,
		"activity_id", tc.Activity.ID,
	)
	a.metrics.TurnError()

	// Only the emulator renders trace activities; other channels would show them to the user.
	if tc.Activity.ChannelID == ChannelEmulator {
		trace := NewReply(tc.Activity, TypeTrace)
		trace.Name = "OnTurnError Trace"
		trace.Label = "TurnError"
		trace.ValueType = "https://www.botframework.com/schemas/error"
		trace.Value = turnErr.Error()
		if err := tc.SendActivity(ctx, trace); err != nil {
			a.log.Warn("send trace failed", "error", err)
		}
	}
	if err := tc.SendText(ctx, GenericErrorText); err != nil {
		return fmt.Errorf("turn error %w; reply failed: %w", turnErr, err)
	}
	return nil
}
