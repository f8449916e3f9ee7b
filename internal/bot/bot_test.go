package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timebank/backend/internal/cards"
	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/metrics"
	"github.com/timebank/backend/internal/models"
	"github.com/timebank/backend/internal/repository"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// stepClock returns times one minute apart starting at start.
func stepClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Minute)
		n++
		return t
	}
}

var start = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func newHandler(t *testing.T, opts ...Option) (*Handler, *repository.Gateway) {
	t.Helper()
	g := repository.NewMemoryGateway()
	opts = append([]Option{WithLogger(quiet), WithClock(stepClock(start))}, opts...)
	return New(catalog.New(catalog.Default()), g, opts...), g
}

func send(t *testing.T, h *Handler, user, text string) Reply {
	t.Helper()
	replies, err := h.Handle(context.Background(), Message{UserID: user, UserName: "Ada", Text: text})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	return replies[0]
}

func balanceText(t *testing.T, r Reply) string {
	t.Helper()
	require.NotNil(t, r.Card, "expected a balance card, got text %q", r.Text)
	return r.Card.Texts()[1]
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"save 30 mins - chatgpt": CommandSave,
		"saved":                  CommandSave,
		"balance":                CommandBalance,
		"balance please":         CommandBalance,
		"redeem":                 CommandRedeem,
		"history":                CommandHistory,
		"help":                   CommandHelp,
		"":                       CommandHelp,
		"what is my balance":     CommandHelp,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), in)
	}
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

func TestHandle_NoIdentityShortCircuits(t *testing.T) {
	h, g := newHandler(t)
	for _, text := range []string{"save 30 mins - ChatGPT", "balance", "history", "anything"} {
		replies, err := h.Handle(context.Background(), Message{Text: text})
		require.NoError(t, err)
		require.Len(t, replies, 1)
		assert.Equal(t, MsgNoIdentity, replies[0].Text)
	}
	entries, _ := g.TimeEntries.ListByUser(context.Background(), "")
	assert.Empty(t, entries)
}

// ---------------------------------------------------------------------------
// save
// ---------------------------------------------------------------------------

func TestSave_FirstSaveThenBalance(t *testing.T) {
	h, g := newHandler(t)

	assert.Equal(t, MsgNoCredits, send(t, h, "u1", "balance").Text)

	r := send(t, h, "u1", "save 30 mins - ChatGPT")
	require.NotNil(t, r.Card)
	assert.Equal(t, "✅ Time saved successfully!", r.Card.Texts()[0])
	facts := r.Card.FactValues()
	assert.Equal(t, "30 minutes", facts["Time Saved:"])
	assert.Equal(t, "ChatGPT", facts["Tool Used:"])
	assert.Equal(t, "1.25x", facts["Multiplier:"])
	assert.Equal(t, "1.25", facts["Credits Earned:"])

	b := send(t, h, "u1", "balance")
	assert.Equal(t, "1.25 credits", balanceText(t, b))
	assert.Equal(t, "Last updated: 3/4/2025", b.Card.Texts()[2])

	entries, err := g.TimeEntries.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "save 30 mins - chatgpt", entries[0].Description)
	assert.Equal(t, "Ada", entries[0].UserName)
}

func TestSave_ScenarioU1(t *testing.T) {
	h, _ := newHandler(t)

	r := send(t, h, "U1", "save 60 mins - Copilot")
	require.NotNil(t, r.Card)
	assert.Equal(t, "3.00", r.Card.FactValues()["Credits Earned:"])
	assert.Equal(t, "3.00 credits", balanceText(t, send(t, h, "U1", "balance")))

	rej := send(t, h, "U1", "save 30 mins - Unknown")
	assert.Equal(t, "Tool not recognized. Available tools: ChatGPT, Copilot, Amazon Q Developer", rej.Text)
	assert.Equal(t, "3.00 credits", balanceText(t, send(t, h, "U1", "balance")))
}

func TestSave_CreditsFormula(t *testing.T) {
	h, g := newHandler(t)
	ctx := context.Background()

	var want float64
	for i, tool := range catalog.Default() {
		for _, m := range []int{1, 7, 30, 45, 121} {
			user := fmt.Sprintf("user-%d", i)
			before, _ := g.Credits.GetByUser(ctx, user)
			prev := 0.0
			if before != nil {
				prev = before.TotalCredits
			}

			send(t, h, user, fmt.Sprintf("save %d mins - %s", m, strings.ToUpper(tool.Name)))

			want = float64(m) * tool.Multiplier / 30
			entries, _ := g.TimeEntries.ListByUser(ctx, user)
			assert.InDelta(t, want, entries[0].CreditsEarned, 1e-9)
			assert.Equal(t, tool.Multiplier, entries[0].Multiplier)

			after, _ := g.Credits.GetByUser(ctx, user)
			assert.InDelta(t, prev+want, after.TotalCredits, 1e-9)
		}
	}
}

func TestSave_MultiWordToolName(t *testing.T) {
	h, _ := newHandler(t)
	r := send(t, h, "u1", "save 45 mins - amazon   q developer")
	require.NotNil(t, r.Card, r.Text)
	assert.Equal(t, "Amazon Q Developer", r.Card.FactValues()["Tool Used:"])
	assert.Equal(t, "2.25", r.Card.FactValues()["Credits Earned:"])
}

func TestSave_InvalidInputMutatesNothing(t *testing.T) {
	cases := map[string]string{
		"save":                       MsgSaveUsage,
		"save 30 mins -":             MsgSaveUsage,
		"save abc mins - ChatGPT":    MsgInvalidMins,
		"save 0 mins - ChatGPT":      MsgInvalidMins,
		"save -15 mins - ChatGPT":    MsgInvalidMins,
		"save 1.5 mins - ChatGPT":    MsgInvalidMins,
		"save 30 mins - chat gpt":    "Tool not recognized. Available tools: ChatGPT, Copilot, Amazon Q Developer",
		"save 30 mins - ChatGPT Pro": "Tool not recognized. Available tools: ChatGPT, Copilot, Amazon Q Developer",
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			h, g := newHandler(t)
			r := send(t, h, "u1", text)
			assert.Nil(t, r.Card)
			assert.Equal(t, want, r.Text)

			entries, _ := g.TimeEntries.ListByUser(context.Background(), "u1")
			assert.Empty(t, entries)
			c, _ := g.Credits.GetByUser(context.Background(), "u1")
			assert.Nil(t, c)
		})
	}
}

func TestSave_EmptyCatalogRejectsEveryTool(t *testing.T) {
	g := repository.NewMemoryGateway()
	h := New(catalog.New(nil), g, WithLogger(quiet))
	r := send(t, h, "u1", "save 30 mins - ChatGPT")
	assert.Equal(t, "Tool not recognized. Available tools: ", r.Text)
}

// ---------------------------------------------------------------------------
// history
// ---------------------------------------------------------------------------

func TestHistory_NewestFirstTruncated(t *testing.T) {
	h, _ := newHandler(t)
	assert.Equal(t, MsgNoHistory, send(t, h, "u1", "history").Text)

	for m := 1; m <= 7; m++ {
		send(t, h, "u1", fmt.Sprintf("save %d mins - ChatGPT", m))
	}
	send(t, h, "u2", "save 99 mins - Copilot")

	r := send(t, h, "u1", "history")
	require.NotNil(t, r.Card)
	assert.Equal(t, "📊 Time Saving History", r.Card.Texts()[0])

	var minutes []string
	var boxes int
	for _, el := range r.Card.Body[1:] {
		box, ok := el.(*cards.Container)
		require.True(t, ok)
		boxes++
		fs := box.Items[0].(*cards.FactSet)
		assert.Equal(t, "Date:", fs.Facts[0].Title)
		assert.Equal(t, "3/4/2025", fs.Facts[0].Value)
		minutes = append(minutes, fs.Facts[1].Value)
	}
	assert.Equal(t, HistoryLimit, boxes)
	assert.Equal(t, []string{"7 minutes", "6 minutes", "5 minutes", "4 minutes", "3 minutes"}, minutes)
}

// ---------------------------------------------------------------------------
// redeem and help
// ---------------------------------------------------------------------------

func TestRedeem_ListsActiveBenefits(t *testing.T) {
	h, _ := newHandler(t)
	r := send(t, h, "u1", "redeem")
	require.NotNil(t, r.Card)

	texts := r.Card.Texts()
	assert.Equal(t, "🎁 Available Benefits", texts[0])
	assert.Equal(t, "Family Day Off (100 credits)", texts[1])
	assert.Equal(t, "Take a day off to spend with family", texts[2])
	assert.Len(t, r.Card.Body, 1+len(models.DefaultBenefits()))

	require.Len(t, r.Card.Actions, 1)
	assert.Equal(t, "Action.Submit", r.Card.Actions[0].Type)
	assert.Equal(t, "Redeem Benefit", r.Card.Actions[0].Title)
	assert.Equal(t, map[string]string{"command": "redeem"}, r.Card.Actions[0].Data)
}

func TestHelp_ListsCommandsAndTools(t *testing.T) {
	h, _ := newHandler(t)
	for _, text := range []string{"help", "hello there", ""} {
		r := send(t, h, "u1", text)
		require.NotNil(t, r.Card)
		texts := r.Card.Texts()
		assert.Equal(t, "🎯 TimeBank Commands", texts[0])
		assert.Equal(t, "🛠️ Available Tools:", texts[2])
		assert.Equal(t, "ChatGPT (1.25x): AI-powered chat assistant\n"+
			"Copilot (1.5x): AI pair programmer\n"+
			"Amazon Q Developer (1.5x): AI-powered coding companion for AWS", texts[3])
		facts := r.Card.FactValues()
		assert.Contains(t, facts, "save")
		assert.Contains(t, facts, "history")
	}
}

// ---------------------------------------------------------------------------
// Storage errors and metrics
// ---------------------------------------------------------------------------

type brokenCredits struct{ err error }

func (b brokenCredits) GetByUser(context.Context, string) (*models.UserCredits, error) {
	return nil, b.err
}
func (b brokenCredits) Upsert(context.Context, *models.UserCredits) error { return b.err }

type brokenEntries struct{ err error }

func (b brokenEntries) Append(context.Context, *models.TimeEntry) error { return b.err }
func (b brokenEntries) ListByUser(context.Context, string) ([]*models.TimeEntry, error) {
	return nil, b.err
}
func (b brokenEntries) Get(context.Context, string) (*models.TimeEntry, error) { return nil, b.err }

type brokenBenefits struct{ err error }

func (b brokenBenefits) Append(context.Context, *models.Benefit) error { return b.err }
func (b brokenBenefits) ListActive(context.Context) ([]*models.Benefit, error) {
	return nil, b.err
}

func TestHandle_StorageErrorsPropagate(t *testing.T) {
	boom := errors.New("graph: status 503")
	g := &repository.Gateway{
		TimeEntries: brokenEntries{boom},
		Credits:     brokenCredits{boom},
		Benefits:    brokenBenefits{boom},
	}
	h := New(catalog.New(catalog.Default()), g, WithLogger(quiet))

	for _, text := range []string{"save 30 mins - ChatGPT", "balance", "redeem", "history"} {
		replies, err := h.Handle(context.Background(), Message{UserID: "u1", Text: text})
		assert.ErrorIs(t, err, boom, text)
		assert.Nil(t, replies)
	}
}

func TestHandle_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h, _ := newHandler(t, WithMetrics(m))

	send(t, h, "u1", "save 60 mins - Copilot")
	send(t, h, "u1", "save 30 mins - nope")
	send(t, h, "u1", "balance")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues(CommandSave)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues(CommandBalance)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CreditsEarned))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.25x", FormatMultiplier(1.25))
	assert.Equal(t, "2x", FormatMultiplier(2))
	assert.Equal(t, "0.33", FormatCredits(1.0/3))
	assert.Equal(t, "0.00", FormatCredits(0))
	assert.Equal(t, "3.00", FormatCredits(math.Nextafter(3, 0)))
}

func TestWithLocation(t *testing.T) {
	loc := time.FixedZone("UTC-12", -12*3600)
	h, _ := newHandler(t, WithLocation(loc))
	send(t, h, "u1", "save 30 mins - ChatGPT")
	assert.Equal(t, "Last updated: 3/3/2025", send(t, h, "u1", "balance").Card.Texts()[2])
}
