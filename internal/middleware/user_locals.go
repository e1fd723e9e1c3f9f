package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/models"
	"github.com/gigconnect/gigconnect_be/internal/utils"
)

// AttachUserLocals resolves the token's uid to a live user row. Role always
// comes from the store here, never from the token, so role changes apply to
// in-flight sessions.
func AttachUserLocals(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Locals("claims")
		claims, ok := raw.(*utils.Claims)
		if !ok || claims == nil {
			return unauthorized(c)
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return unauthorized(c)
		}

		c.Locals("userId", user.ID.String())
		c.Locals("role", string(user.Role))
		c.Locals("currentUser", &user)

		return c.Next()
	}
}

// CurrentUser returns the user resolved by AttachUserLocals.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals("currentUser").(*models.User)
	return u
}
