package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth validates the caller's bearer credential and exposes the verified
// subject as user_id. Session issuance lives elsewhere; this service only
// consumes the opaque caller identity.
func Auth(secret string) fiber.Handler {
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return unauthenticated(c, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		token, err := jwt.Parse(tokenStr, keyFunc, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return unauthenticated(c, "invalid token")
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return unauthenticated(c, "token has no subject")
		}

		c.Locals("user_id", subject)
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    "unauthenticated",
	})
}
