package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gigconnect/gigconnect_be/internal/models"
)

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

// userPayload is the user shape every auth response returns.
func userPayload(u *models.User) fiber.Map {
	return fiber.Map{
		"id":                  u.ID,
		"name":                u.Name,
		"email":               u.Email,
		"role":                u.Role,
		"location":            u.Location,
		"skills":              u.SkillList(),
		"bio":                 u.Bio,
		"profile_picture":     u.ProfilePicture,
		"is_profile_complete": u.IsProfileComplete,
	}
}

func userSummary(u *models.User) fiber.Map {
	if u == nil {
		return nil
	}
	return fiber.Map{
		"id":              u.ID,
		"name":            u.Name,
		"profile_picture": u.ProfilePicture,
	}
}
