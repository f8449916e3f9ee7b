// Package auth validates the bearer tokens the Bot Framework channel service attaches to
// inbound activities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every validation failure.
var ErrInvalidToken = errors.New("invalid token")

// Issuer is the issuer of channel service tokens.
const Issuer = "https://api.botframework.com"

// Leeway tolerated on exp/nbf for clock skew with the channel service.
const Leeway = 5 * time.Minute

// timeNow is replaced in tests.
var timeNow = time.Now

// Claims are the claims of a channel service token.
type Claims struct {
	jwt.RegisteredClaims
	ServiceURL string `json:"serviceurl"`
}

type Service interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// KeyProvider supplies the jwt.Keyfunc that resolves signing keys. keyfunc.Keyfunc
// implements it.
type KeyProvider interface {
	KeyfuncCtx(ctx context.Context) jwt.Keyfunc
}

type service struct {
	keys   KeyProvider
	appID  string
	issuer string
}

// NewService returns a validator accepting RS256 tokens signed by keys, issued by Issuer
// for audience appID.
func NewService(keys KeyProvider, appID string) *service {
	return &service{keys: keys, appID: appID, issuer: Issuer}
}

// Ensure service implements Service at compile time.
var _ Service = (*service)(nil)

func (s *service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	tok, err := jwt.ParseWithClaims(token, &Claims{}, s.keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.appID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(Leeway),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return c, nil
}
