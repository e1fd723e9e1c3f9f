package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == "" || !allowedSet[strings.ToLower(role)] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "forbidden: insufficient role",
			})
		}
		return c.Next()
	}
}
