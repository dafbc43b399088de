// Package auth signs users in against an OpenID Connect provider and
// verifies the access tokens it issues.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var (
	AccessTokenCookieName string        = "access_token"
	DiscoveryRetries      int           = 5
	DiscoveryRetryDelay   time.Duration = 10 * time.Second
)

type Config struct {
	BaseUri     string
	JWKSUri     string
	LoginConfig oauth2.Config
}

// BuildAuthConfig discovers the provider at authProviderUrl and returns the
// login configuration for clientID.
func BuildAuthConfig(ctx context.Context, clientID string, authProviderUrl string, redirectUrl string) (*Config, error) {
	provider, err := loadOIDCConfig(ctx, authProviderUrl)
	if err != nil {
		return nil, fmt.Errorf("could not load OIDC configuration: %w", err)
	}

	var claims struct {
		JWKSUri string `json:"jwks_uri"`
	}
	if err := provider.Claims(&claims); err != nil {
		return nil, fmt.Errorf("could not read OIDC configuration: %w", err)
	}
	if claims.JWKSUri == "" {
		return nil, fmt.Errorf("OIDC configuration at %s has no jwks_uri", authProviderUrl)
	}

	config := &Config{
		LoginConfig: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    provider.Endpoint(),
			RedirectURL: redirectUrl,
			Scopes:      []string{"profile", "email", oidc.ScopeOpenID},
		},
		BaseUri: authProviderUrl,
		JWKSUri: claims.JWKSUri,
	}
	return config, nil
}

func loadOIDCConfig(ctx context.Context, authProviderUrl string) (*oidc.Provider, error) {
	var provider *oidc.Provider
	var err error
	for i := 0; i < DiscoveryRetries; i++ {
		provider, err = oidc.NewProvider(ctx, authProviderUrl)
		if err == nil {
			return provider, nil
		}
		slog.Warn("could not load OIDC config", "attempt", i+1, "url", authProviderUrl, "err", err)
		if i+1 < DiscoveryRetries {
			select {
			case <-time.After(DiscoveryRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, err
}
