// Package bot is the command handler. Each message is classified on its own by leading
// keyword (save, balance, redeem, history) and anything else gets the help card.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/timebank/backend/internal/cards"
	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/metrics"
	"github.com/timebank/backend/internal/repository"
	"github.com/timebank/backend/internal/services"
)

// Commands.
const (
	CommandSave    = "save"
	CommandBalance = "balance"
	CommandRedeem  = "redeem"
	CommandHistory = "history"
	CommandHelp    = "help"
)

// HistoryLimit is the number of entries the history card shows.
const HistoryLimit = 5

// DateLayout is how dates are shown on cards.
const DateLayout = "1/2/2006"

// User-facing messages.
const (
	MsgNoIdentity  = "Unable to identify user. Please ensure you're properly logged in."
	MsgSaveUsage   = "Please use the format: save <minutes> mins - <tool>"
	MsgInvalidMins = "Please provide a valid number of minutes."
	MsgUnknownTool = "Tool not recognized. Available tools: "
	MsgNoCredits   = "You haven't earned any credits yet."
	MsgNoHistory   = "You haven't logged any time yet."
)

const (
	defaultUserName = "Unknown User"
	// save <minutes> mins - <tool...>
	saveMinTokens    = 5
	saveToolTokenIdx = 4
)

// Message is one inbound command from an identified (or not) user.
type Message struct {
	UserID   string
	UserName string
	Text     string
}

// Reply is either plain text or a card.
type Reply struct {
	Text string
	Card *cards.Card
}

func textReply(s string) []Reply      { return []Reply{{Text: s}} }
func cardReply(c *cards.Card) []Reply { return []Reply{{Card: c}} }

// Handler dispatches commands. It holds no per-conversation state.
type Handler struct {
	catalog  *catalog.Catalog
	store    *repository.Gateway
	accrual  *services.AccrualService
	metrics  *metrics.Metrics
	log      *slog.Logger
	location *time.Location
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics records command and credit counters.
func WithMetrics(m *metrics.Metrics) Option { return func(h *Handler) { h.metrics = m } }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(h *Handler) { h.log = l } }

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.accrual.Now = now } }

// WithLocation sets the zone dates are displayed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option { return func(h *Handler) { h.location = loc } }

// New returns a Handler over the given catalog and store.
func New(cat *catalog.Catalog, store *repository.Gateway, opts ...Option) *Handler {
	h := &Handler{
		catalog:  cat,
		store:    store,
		accrual:  services.NewAccrualService(store.TimeEntries, store.Credits),
		log:      slog.Default(),
		location: time.UTC,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Classify returns the command a lower-cased, trimmed text maps to.
func Classify(text string) string {
	switch {
	case strings.HasPrefix(text, CommandSave):
		return CommandSave
	case strings.HasPrefix(text, CommandBalance):
		return CommandBalance
	case strings.HasPrefix(text, CommandRedeem):
		return CommandRedeem
	case strings.HasPrefix(text, CommandHistory):
		return CommandHistory
	}
	return CommandHelp
}

// Handle runs one command. Validation problems come back as replies; a non-nil error
// means a storage call failed.
func (h *Handler) Handle(ctx context.Context, msg Message) ([]Reply, error) {
	if msg.UserID == "" {
		return textReply(MsgNoIdentity), nil
	}
	if msg.UserName == "" {
		msg.UserName = defaultUserName
	}
	text := strings.ToLower(strings.TrimSpace(msg.Text))
	cmd := Classify(text)
	h.metrics.Command(cmd)
	log := h.log.With("user_id", msg.UserID, "command", cmd)

	switch cmd {
	case CommandSave:
		return h.save(ctx, log, msg, text)
	case CommandBalance:
		return h.balance(ctx, msg.UserID)
	case CommandRedeem:
		return h.redeem(ctx)
	case CommandHistory:
		return h.history(ctx, msg.UserID)
	}
	return cardReply(h.helpCard()), nil
}

// save handles "save <minutes> mins - <tool...>". Only the token count is checked; the
// "mins" and "-" tokens are not.
func (h *Handler) save(ctx context.Context, log *slog.Logger, msg Message, text string) ([]Reply, error) {
	parts := strings.Fields(text)
	if len(parts) < saveMinTokens {
		return textReply(MsgSaveUsage), nil
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes <= 0 {
		return textReply(MsgInvalidMins), nil
	}
	tool, ok := h.catalog.Resolve(strings.Join(parts[saveToolTokenIdx:], " "))
	if !ok {
		return textReply(MsgUnknownTool + strings.Join(h.catalog.Names(), ", ")), nil
	}

	res, err := h.accrual.Record(ctx, msg.UserID, msg.UserName, tool, minutes, text)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	h.metrics.Credits(res.Entry.CreditsEarned)
	log.Info("time saved",
		"tool", tool.Name,
		"minutes", minutes,
		"credits_earned", res.Entry.CreditsEarned,
		"total_credits", res.Balance.TotalCredits,
	)

	return cardReply(cards.New(
		cards.Title("✅ Time saved successfully!"),
		cards.Facts(
			cards.Fact{Title: "Time Saved:", Value: fmt.Sprintf("%d minutes", minutes)},
			cards.Fact{Title: "Tool Used:", Value: tool.Name},
			cards.Fact{Title: "Multiplier:", Value: FormatMultiplier(tool.Multiplier)},
			cards.Fact{Title: "Credits Earned:", Value: FormatCredits(res.Entry.CreditsEarned)},
		),
	)), nil
}

func (h *Handler) balance(ctx context.Context, userID string) ([]Reply, error) {
	credits, err := h.store.Credits.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	if credits == nil {
		return textReply(MsgNoCredits), nil
	}
	return cardReply(cards.New(
		cards.Title("💳 Credit Balance"),
		&cards.TextBlock{Type: "TextBlock", Text: FormatCredits(credits.TotalCredits) + " credits", Size: cards.SizeLarge},
		&cards.TextBlock{Type: "TextBlock", Text: "Last updated: " + h.formatDate(credits.LastUpdated), IsSubtle: true},
	)), nil
}

// redeem lists active benefits. The submit action posts {"command":"redeem"} back, which
// nothing processes yet.
func (h *Handler) redeem(ctx context.Context) ([]Reply, error) {
	benefits, err := h.store.Benefits.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("redeem: %w", err)
	}
	card := cards.New(cards.Title("🎁 Available Benefits"))
	for _, b := range benefits {
		card.Add(cards.Box(
			&cards.TextBlock{
				Type:   "TextBlock",
				Text:   fmt.Sprintf("%s (%s credits)", b.Name, strconv.FormatFloat(b.CreditsRequired, 'f', -1, 64)),
				Weight: cards.WeightBolder,
			},
			cards.Wrapped(b.Description),
		))
	}
	card.Submit("Redeem Benefit", map[string]string{"command": CommandRedeem})
	return cardReply(card), nil
}

func (h *Handler) history(ctx context.Context, userID string) ([]Reply, error) {
	entries, err := h.store.TimeEntries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if len(entries) == 0 {
		return textReply(MsgNoHistory), nil
	}
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	card := cards.New(cards.Title("📊 Time Saving History"))
	for _, e := range entries {
		card.Add(cards.Box(cards.Facts(
			cards.Fact{Title: "Date:", Value: h.formatDate(e.DateLogged)},
			cards.Fact{Title: "Time Saved:", Value: fmt.Sprintf("%d minutes", e.TimeSaved)},
			cards.Fact{Title: "Tool:", Value: e.ToolUsed},
			cards.Fact{Title: "Credits:", Value: FormatCredits(e.CreditsEarned)},
		)))
	}
	return cardReply(card), nil
}

func (h *Handler) helpCard() *cards.Card {
	lines := make([]string, 0, h.catalog.Len())
	for _, t := range h.catalog.Tools() {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", t.Name, FormatMultiplier(t.Multiplier), t.Description))
	}
	return cards.New(
		cards.Title("🎯 TimeBank Commands"),
		cards.Wrapped("Here are the available commands:"),
		cards.Facts(
			cards.Fact{Title: CommandSave, Value: "save <minutes> mins - <tool>\nE.g., save 30 mins - ChatGPT"},
			cards.Fact{Title: CommandBalance, Value: "Check your current credit balance"},
			cards.Fact{Title: CommandRedeem, Value: "View and redeem available benefits"},
			cards.Fact{Title: CommandHistory, Value: "View your time saving history"},
		),
		&cards.TextBlock{Type: "TextBlock", Text: "🛠️ Available Tools:", Weight: cards.WeightBolder, Spacing: cards.SpacingMedium},
		cards.Wrapped(strings.Join(lines, "\n")),
	)
}

func (h *Handler) formatDate(t time.Time) string {
	return t.In(h.location).Format(DateLayout)
}

// FormatCredits renders a credit amount with two decimals.
func FormatCredits(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}

// FormatMultiplier renders a multiplier in its shortest form followed by "x", e.g. "1.25x".
func FormatMultiplier(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64) + "x"
}
