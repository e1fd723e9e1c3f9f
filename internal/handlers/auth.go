package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/middleware"
	"github.com/gigconnect/gigconnect_be/internal/models"
	"github.com/gigconnect/gigconnect_be/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     string   `json:"role"` // client / freelancer, default client
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == models.RoleUnset {
		role = models.RoleClient
	}

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "Nama wajib diisi")
	}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Format email tidak valid")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	} else if len(password) < 6 {
		errs.Add("password", "Password minimal 6 karakter")
	}
	if !role.Valid() {
		errs.Add("role", "Role tidak dikenal")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	// Cek email sudah ada. Unique index tetap jadi penjaga terakhir
	// kalau dua register berebut email yang sama.
	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return fail(c, fiber.StatusBadRequest, "User already exists with this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusInternalServerError, "Terjadi kesalahan server")
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}

	u := models.User{
		Name:              name,
		Email:             email,
		Password:          pw,
		Role:              role,
		Location:          strings.TrimSpace(req.Location),
		IsProfileComplete: true,
	}
	if role == models.RoleFreelancer {
		u.SetSkills(req.Skills)
	} else {
		u.SetSkills(nil)
	}

	if err := h.DB.Create(&u).Error; err != nil {
		if isDuplicate(err) {
			return fail(c, fiber.StatusBadRequest, "User already exists with this email")
		}
		return fail(c, fiber.StatusInternalServerError, "Gagal register")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), h.Expires)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    userPayload(&u),
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid email or password")
	}

	// Akun Google-only punya password kosong dan selalu gagal di sini.
	if !utils.CheckPassword(u.Password, password) {
		return fail(c, fiber.StatusBadRequest, "Invalid email or password")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), h.Expires)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    userPayload(&u),
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return fail(c, fiber.StatusUnauthorized, "User tidak ditemukan")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    userPayload(u),
	})
}

type UpdateProfileReq struct {
	Role     string   `json:"role"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

// UpdateProfile is the "complete your profile" step: role and location land
// together so is_profile_complete can flip in the same write.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return fail(c, fiber.StatusUnauthorized, "User tidak ditemukan")
	}

	var req UpdateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	location := strings.TrimSpace(req.Location)

	if !role.Valid() {
		return fail(c, fiber.StatusBadRequest, "Valid role is required")
	}
	if location == "" {
		return fail(c, fiber.StatusBadRequest, "Location is required")
	}
	if role == models.RoleFreelancer && len(req.Skills) == 0 {
		return fail(c, fiber.StatusBadRequest, "At least one skill is required for freelancers")
	}

	u.Role = role
	u.Location = location
	if role == models.RoleFreelancer {
		u.SetSkills(req.Skills)
	} else {
		u.SetSkills(nil)
	}
	u.IsProfileComplete = true

	if err := h.DB.Save(u).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal memperbarui profil")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userPayload(u),
	})
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
