package middleware

import (
	"encoding/base64"
	"log/slog"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/core-notes/internal/auth"
)

var bearerTokenPattern *regexp.Regexp = regexp.MustCompile(`^Bearer\s+(.*)$`)

// ValidateAccessToken stores the verified token string under localName. The
// token comes from the Authorization header or, failing that, the cookie.
// Page loads without a valid token are sent to loginPath when it is set;
// everything else gets a 401.
func ValidateAccessToken(localName string, cookieName string, verifier auth.Verifier, loginPath string) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		reqHeaders := c.GetReqHeaders()
		var tokenStr string
		authHeaderValue, ok := reqHeaders["Authorization"]
		if !ok || len(authHeaderValue) == 0 {
			tokenStr = c.Cookies(cookieName)
		} else {
			match := bearerTokenPattern.FindStringSubmatch(authHeaderValue[0])
			if match == nil {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			tokenStr = match[1]
		}

		if tokenStr == "" {
			return unauthorized(c, loginPath)
		}
		if _, err := verifier.VerifyToken(c.UserContext(), tokenStr); err != nil {
			slog.Debug("rejected access token", "path", c.Path(), "err", err)
			return unauthorized(c, loginPath)
		}
		c.Locals(localName, tokenStr)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, loginPath string) error {
	if loginPath == "" || c.Method() != fiber.MethodGet {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	cameFrom := base64.URLEncoding.EncodeToString([]byte(c.OriginalURL()))
	return c.Redirect(loginPath+"?came_from="+cameFrom, fiber.StatusSeeOther)
}
