package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jws"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/stretchr/testify/require"
)

const testKeyID = "test-key"

// testProvider is a minimal OpenID provider: discovery, keys and a token
// endpoint that hands out AccessToken for any code.
type testProvider struct {
	*httptest.Server
	key         jwk.Key
	AccessToken string
	Codes       []string
	KeyFetches  atomic.Int32
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv, err := jwk.New(raw)
	require.NoError(t, err)
	require.NoError(t, priv.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, priv.Set(jwk.AlgorithmKey, jwa.RS256))

	pub, err := jwk.New(&raw.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256))
	set := jwk.NewSet()
	set.Add(pub)

	p := &testProvider{key: priv}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                                p.URL,
			"authorization_endpoint":                p.URL + "/protocol/openid-connect/auth",
			"token_endpoint":                        p.URL + "/protocol/openid-connect/token",
			"jwks_uri":                              p.URL + "/protocol/openid-connect/certs",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		p.KeyFetches.Add(1)
		writeJSON(w, set)
	})
	mux.HandleFunc("/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		p.Codes = append(p.Codes, r.Form.Get("code"))
		writeJSON(w, map[string]any{
			"access_token": p.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   300,
		})
	})
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)
	return p
}

func newTestVerifier(t *testing.T, config *Config) *TokenVerifier {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewTokenVerifier(ctx, config)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (p *testProvider) sign(t *testing.T, issuer string, expires time.Time) string {
	t.Helper()
	tok := jwt.New()
	require.NoError(t, tok.Set(jwt.IssuerKey, issuer))
	require.NoError(t, tok.Set(jwt.SubjectKey, "user-1"))
	require.NoError(t, tok.Set(jwt.ExpirationKey, expires))

	hdrs := jws.NewHeaders()
	require.NoError(t, hdrs.Set(jws.KeyIDKey, testKeyID))
	signed, err := jwt.Sign(tok, jwa.RS256, p.key, jwt.WithHeaders(hdrs))
	require.NoError(t, err)
	return string(signed)
}

func (p *testProvider) validToken(t *testing.T) string {
	return p.sign(t, p.URL, time.Now().Add(time.Hour))
}
