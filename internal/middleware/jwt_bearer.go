package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gigconnect/gigconnect_be/internal/utils"
)

// JWTFromHeader validates the Authorization bearer token and stores the parsed
// claims for the rest of the chain. Missing, malformed, expired or badly signed
// tokens all end the request with 401.
func JWTFromHeader(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c)
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Not authorized to access this resource",
	})
}
