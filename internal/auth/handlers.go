package auth

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/core-notes/internal/cache"
)

// Handlers serves the login flow under /auth.
type Handlers struct {
	Config     *Config
	Verifier   Verifier
	Nonces     *cache.TimedCache[struct{}]
	CookieName string
}

func (h *Handlers) TokenCookieName() string {
	if h.CookieName == "" {
		return AccessTokenCookieName
	}
	return h.CookieName
}

func (h *Handlers) Register(router fiber.Router) {
	router.Get("/login", h.Login)
	router.Get("/logout", h.Logout)
	router.Get("/callback", h.Callback)
}

// Login redirects to the provider. The optional came_from parameter is a
// base64-encoded local path to return to afterwards.
func (h *Handlers) Login(c *fiber.Ctx) error {
	cameFromParam := c.Query("came_from")
	var cameFrom string
	if cameFromParam != "" {
		cameFromBytes, err := base64.URLEncoding.DecodeString(cameFromParam)
		if err == nil {
			cameFrom = LocalPath(string(cameFromBytes))
		}
	}

	nonce, err := NewNonce()
	if err != nil {
		slog.Error("failed to create nonce", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	h.Nonces.Insert(nonce, struct{}{})

	state := &State{CameFrom: cameFrom}
	stateParam, err := state.Encode(nonce)
	if err != nil {
		slog.Error("failed to encode state", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.Redirect(h.Config.LoginConfig.AuthCodeURL(stateParam), fiber.StatusSeeOther)
}

func (h *Handlers) Logout(c *fiber.Ctx) error {
	c.ClearCookie(h.TokenCookieName())
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handlers) Callback(c *fiber.Ctx) error {
	state, nonce, err := ParseState(c.Query("state"))
	if err != nil {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString(fmt.Sprintf("state is invalid: %s", err))
	}
	if _, ok := h.Nonces.GetAndRemove(nonce); !ok {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("state is invalid: nonce not found in cache")
	}

	token, err := h.Config.LoginConfig.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		slog.Error("code-token exchange failed", "err", err)
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("code-token exchange failed")
	}

	if _, err := h.Verifier.VerifyToken(c.UserContext(), token.AccessToken); err != nil {
		slog.Warn("provider returned an invalid access token", "err", err)
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.TokenCookieName(),
		Value:    token.AccessToken,
		Path:     "/",
		Expires:  token.Expiry,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	target := "/"
	if state.CameFrom != "" {
		target = state.CameFrom
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}
