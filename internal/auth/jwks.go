package auth

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
)

// DefaultKeysURL is the Bot Framework OpenID signing key set.
const DefaultKeysURL = "https://login.botframework.com/v1/.well-known/keys"

// NewKeySet loads the JSON Web Key Set at url and keeps it refreshed in the background
// until ctx ends. A token with an unknown kid triggers a rate-limited refresh. An empty url
// means DefaultKeysURL.
func NewKeySet(ctx context.Context, url string) (keyfunc.Keyfunc, error) {
	if url == "" {
		url = DefaultKeysURL
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load signing keys from %s: %w", url, err)
	}
	return k, nil
}
