package auth

import (
	"context"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
)

// Verifier checks an access token and returns its parsed claims.
type Verifier interface {
	VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error)
}

// TokenVerifier validates tokens against the provider's published keys.
// The key set is fetched once and refreshed in the background until the
// context given to NewTokenVerifier is done.
type TokenVerifier struct {
	Issuer  string
	JWKSUri string
	keys    *jwk.AutoRefresh
}

func NewTokenVerifier(ctx context.Context, config *Config) *TokenVerifier {
	keys := jwk.NewAutoRefresh(ctx)
	keys.Configure(config.JWKSUri)
	return &TokenVerifier{
		Issuer:  config.BaseUri,
		JWKSUri: config.JWKSUri,
		keys:    keys,
	}
}

func (v *TokenVerifier) VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error) {
	jwks, err := v.keys.Fetch(ctx, v.JWKSUri)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseString(tokenString, jwt.WithKeySet(jwks))
	if err != nil {
		return nil, err
	}
	if err := jwt.Validate(token, jwt.WithIssuer(v.Issuer)); err != nil {
		return nil, err
	}
	return token, nil
}
