package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtPkg "github.com/vintageai/vintageai-backend/pkg/jwt"
)

// AuthMiddleware requires a valid bearer token and stores the caller's
// identity in Locals. No handler side effects run on an invalid token.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization header format",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := jwtPkg.ValidateToken(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("userEmail", claims.Email)

		return c.Next()
	}
}

// OptionalAuth populates identity Locals when a valid token is present
// and lets the request through either way. Checkout creation uses this:
// guests may buy credits too.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if claims, err := jwtPkg.ValidateToken(tokenString, secret); err == nil {
				c.Locals("userID", claims.UserID)
				c.Locals("userEmail", claims.Email)
			}
		}
		return c.Next()
	}
}
