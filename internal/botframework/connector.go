package botframework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Bot Framework token endpoint and scope for outbound connector calls.
const (
	TokenURL       = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"
	ConnectorScope = "https://api.botframework.com/.default"
)

// Sender delivers a reply activity to the channel the inbound activity came from.
type Sender interface {
	Send(ctx context.Context, in, reply *Activity) error
}

// ConnectorClient posts replies to the channel's connector service.
type ConnectorClient struct {
	http *http.Client
}

// NewConnectorClient returns a client over httpClient, which must attach the bot's bearer
// token when the channel requires one (see CredentialsClient).
func NewConnectorClient(httpClient *http.Client) *ConnectorClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ConnectorClient{http: httpClient}
}

// CredentialsClient returns an http.Client that authenticates as the bot using the OAuth2
// client credentials flow. With an empty appID it returns a plain client, which is what
// the local emulator expects.
func CredentialsClient(ctx context.Context, appID, appPassword, tokenURL string) *http.Client {
	if appID == "" {
		return &http.Client{Timeout: 15 * time.Second}
	}
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	cfg := clientcredentials.Config{
		ClientID:     appID,
		ClientSecret: appPassword,
		TokenURL:     tokenURL,
		Scopes:       []string{ConnectorScope},
	}
	c := cfg.Client(ctx)
	c.Timeout = 15 * time.Second
	return c
}

// Send implements Sender by replying to in within its conversation.
func (c *ConnectorClient) Send(ctx context.Context, in, reply *Activity) error {
	if in.ServiceURL == "" {
		return errors.New("activity has no serviceUrl")
	}
	u := strings.TrimRight(in.ServiceURL, "/") + "/v3/conversations/" + url.PathEscape(in.Conversation.ID) + "/activities"
	if in.ID != "" {
		u += "/" + url.PathEscape(in.ID)
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post activity: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
