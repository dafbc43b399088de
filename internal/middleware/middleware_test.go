package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	valid string
	seen  []string
}

func (s *stubVerifier) VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error) {
	s.seen = append(s.seen, tokenString)
	if tokenString != s.valid {
		return nil, errors.New("invalid token")
	}
	return jwt.New(), nil
}

func newTestApp(v *stubVerifier, loginPath string) *fiber.App {
	app := fiber.New()
	app.Use(ValidateAccessToken("token", "access_token", v, loginPath))
	handler := func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("token").(string))
	}
	app.Get("/", handler)
	app.Post("/refresh", handler)
	return app
}

func TestValidateAccessTokenSources(t *testing.T) {
	v := &stubVerifier{valid: "good"}
	app := newTestApp(v, "")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", "access_token=good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic Z29vZA==")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, []string{"good", "good"}, v.seen)
}

func TestValidateAccessTokenRejects(t *testing.T) {
	v := &stubVerifier{valid: "good"}
	app := newTestApp(v, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", "access_token=bad")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestValidateAccessTokenRedirectsPageLoads(t *testing.T) {
	v := &stubVerifier{valid: "good"}
	app := newTestApp(v, "/auth/login")

	resp, err := app.Test(httptest.NewRequest("GET", "/?q=milk", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	cameFrom := base64.URLEncoding.EncodeToString([]byte("/?q=milk"))
	assert.Equal(t, "/auth/login?came_from="+cameFrom, resp.Header.Get("Location"))

	resp, err = app.Test(httptest.NewRequest("POST", "/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "form posts are not redirected")
}
