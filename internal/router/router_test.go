package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timebank/backend/internal/auth"
	"github.com/timebank/backend/internal/bot"
	"github.com/timebank/backend/internal/botframework"
	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/dashboard"
	"github.com/timebank/backend/internal/handlers"
	"github.com/timebank/backend/internal/metrics"
	"github.com/timebank/backend/internal/repository"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type nopSender struct{ n int }

func (s *nopSender) Send(context.Context, *botframework.Activity, *botframework.Activity) error {
	s.n++
	return nil
}

type fixedValidator struct {
	serviceURL string
}

func (v fixedValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{ServiceURL: v.serviceURL}, nil
}

const activity = `{"type":"message","id":"1","serviceUrl":"https://smba.example.com/","from":{"id":"29:u","aadObjectId":"aad"},"recipient":{"id":"28:b"},"conversation":{"id":"c"},"text":"balance"}`

func newRouter(t *testing.T, production bool) (http.Handler, *nopSender) {
	t.Helper()
	g := repository.NewMemoryGateway()
	cat := catalog.New(catalog.Default())
	reg, m := metrics.NewRegistry()
	sender := &nopSender{}
	h := bot.New(cat, g, bot.WithLogger(quiet), bot.WithMetrics(m))
	return New(Config{
		Production: production,
		Messages: &handlers.MessagesHandler{
			Adapter: botframework.NewAdapter(sender, quiet, m),
			Bot:     &bot.TurnHandler{Handler: h, AllowChannelIDFallback: !production},
			Logger:  quiet,
		},
		Dashboard: dashboard.NewHandler(cat, g.Benefits, quiet),
		Validator: fixedValidator{serviceURL: "https://smba.example.com"},
		Gatherer:  reg,
		Logger:    quiet,
	}), sender
}

func do(h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newRouter(t, true)

	rec := do(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(h, http.MethodPost, "/api/messages", activity, map[string]string{"Authorization": "Bearer good"})
	rec = do(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `timebank_commands_total{command="balance"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMessages_ProductionRequiresToken(t *testing.T) {
	h, sender := newRouter(t, true)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/messages", activity, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/messages", activity, map[string]string{"Authorization": "Bearer bad"}).Code)
	assert.Zero(t, sender.n)

	rec := do(h, http.MethodPost, "/api/messages", activity, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sender.n)

	// No permissive CORS in production.
	rec = do(h, http.MethodOptions, "/api/messages", "", map[string]string{
		"Origin":                        "https://example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMessages_DevelopmentIsOpenWithCORS(t *testing.T) {
	h, sender := newRouter(t, false)

	rec := do(h, http.MethodPost, "/api/messages", activity, map[string]string{"Origin": "http://localhost:3978"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, sender.n)

	// Browsers send the requested header names lower-cased and sorted.
	for _, headers := range []string{"content-type", "authorization,content-type"} {
		preflight := do(h, http.MethodOptions, "/api/messages", "", map[string]string{
			"Origin":                         "http://localhost:3978",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": headers,
		})
		assert.Equal(t, http.StatusOK, preflight.Code, headers)
		assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"), headers)
	}

	plain := do(h, http.MethodOptions, "/api/messages", "", nil)
	assert.Equal(t, http.StatusOK, plain.Code)
}

func TestDashboardRoutes(t *testing.T) {
	h, _ := newRouter(t, true)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/tools", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/benefits", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/api/v1/tools", "", nil).Code)
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	g := repository.NewMemoryGateway()
	panicky := botframework.BotFunc(func(context.Context, *botframework.TurnContext) error {
		panic(errors.New("boom"))
	})
	h := New(Config{
		Messages:  &handlers.MessagesHandler{Adapter: botframework.NewAdapter(&nopSender{}, quiet, nil), Bot: panicky, Logger: quiet},
		Dashboard: dashboard.NewHandler(catalog.New(nil), g.Benefits, quiet),
		Logger:    quiet,
	})
	rec := do(h, http.MethodPost, "/api/messages", activity, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
