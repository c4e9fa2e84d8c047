package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
)

// Protect verifies the bearer token and stores it in locals under "user".
// Missing, malformed and expired tokens are all rejected with 401.
func Protect(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, token failed"})
		},
	})
}

// AdminOnly rejects authenticated requests whose token lacks the admin claim.
// It must run after Protect so a verified token is already in locals.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdminFromCtx(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized as admin"})
		}
		return c.Next()
	}
}
