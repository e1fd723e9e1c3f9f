package handlers

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/models"
)

type GigHandler struct {
	DB *gorm.DB
}

func NewGigHandler(db *gorm.DB) *GigHandler {
	return &GigHandler{DB: db}
}

// ==== REQUEST STRUCTS ====

type BudgetReq struct {
	Type     string `json:"type"` // fixed / hourly
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type GigReq struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	SkillsRequired []string  `json:"skills_required"`
	Budget         BudgetReq `json:"budget"`
	Duration       string    `json:"duration"`
	Location       string    `json:"location"`
	Status         string    `json:"status"` // update only
}

func gigPayload(g *models.Gig) fiber.Map {
	out := fiber.Map{
		"id":              g.ID,
		"title":           g.Title,
		"description":     g.Description,
		"category":        g.Category,
		"skills_required": g.SkillList(),
		"budget": fiber.Map{
			"type":     g.BudgetType,
			"amount":   g.BudgetAmount,
			"currency": g.BudgetCurrency,
		},
		"duration":   g.Duration,
		"location":   g.Location,
		"status":     g.Status,
		"client_id":  g.ClientID,
		"created_at": g.CreatedAt,
		"updated_at": g.UpdatedAt,
	}
	if g.Client != nil {
		out["client"] = userSummary(g.Client)
	}
	if g.AssignedFreelancerID != nil {
		out["assigned_freelancer_id"] = g.AssignedFreelancerID
	}
	if g.AssignedFreelancer != nil {
		out["assigned_freelancer"] = userSummary(g.AssignedFreelancer)
	}
	return out
}

// ==== HANDLER ====

func (h *GigHandler) Create(c *fiber.Ctx) error {
	var req GigReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	location := strings.TrimSpace(req.Location)

	if title == "" || description == "" || location == "" {
		return fail(c, fiber.StatusBadRequest, "Title, description and location are required")
	}
	if !models.ValidCategory(req.Category) {
		return fail(c, fiber.StatusBadRequest, "Unknown category")
	}
	if !models.ValidDuration(req.Duration) {
		return fail(c, fiber.StatusBadRequest, "Unknown duration")
	}
	budgetType := models.BudgetType(req.Budget.Type)
	if budgetType != models.BudgetFixed && budgetType != models.BudgetHourly {
		return fail(c, fiber.StatusBadRequest, "Budget type must be fixed or hourly")
	}
	if req.Budget.Amount < 1 {
		return fail(c, fiber.StatusBadRequest, "Budget amount must be positive")
	}
	if len(req.SkillsRequired) == 0 {
		return fail(c, fiber.StatusBadRequest, "At least one required skill is needed")
	}

	uid, _ := c.Locals("userId").(string)
	clientID, err := uuid.Parse(uid)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user ID")
	}

	currency := strings.TrimSpace(req.Budget.Currency)
	if currency == "" {
		currency = "USD"
	}

	gig := models.Gig{
		Title:          title,
		Description:    description,
		Category:       req.Category,
		BudgetType:     budgetType,
		BudgetAmount:   req.Budget.Amount,
		BudgetCurrency: currency,
		Duration:       req.Duration,
		Location:       location,
		Status:         models.GigStatusActive,
		ClientID:       clientID,
	}
	gig.SetSkills(req.SkillsRequired)

	if err := h.DB.Create(&gig).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menyimpan gig")
	}

	h.DB.Preload("Client").First(&gig, "id = ?", gig.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Gig created successfully",
		"gig":     gigPayload(&gig),
	})
}

func (h *GigHandler) ListPublic(c *fiber.Ctx) error {
	qSearch := strings.TrimSpace(c.Query("search"))
	category := c.Query("category")
	location := strings.TrimSpace(c.Query("location"))
	skills := strings.TrimSpace(c.Query("skills"))
	budgetMin := c.QueryInt("budgetMin", 0)
	budgetMax := c.QueryInt("budgetMax", 0)

	q := h.DB.Model(&models.Gig{}).Where("status = ?", models.GigStatusActive)

	if category != "" {
		q = q.Where("category = ?", category)
	}
	if location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if skills != "" {
		// skills_required tersimpan sebagai array JSON, cek per elemen
		sub := h.DB
		for i, s := range strings.Split(skills, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			pattern := `%"` + s + `"%`
			if i == 0 {
				sub = h.DB.Where("skills_required LIKE ?", pattern)
			} else {
				sub = sub.Or("skills_required LIKE ?", pattern)
			}
		}
		q = q.Where(sub)
	}
	if budgetMin > 0 {
		q = q.Where("budget_amount >= ?", budgetMin)
	}
	if budgetMax > 0 {
		q = q.Where("budget_amount <= ?", budgetMax)
	}
	if qSearch != "" {
		needle := "%" + strings.ToLower(qSearch) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menghitung gig")
	}

	var gigs []models.Gig
	if err := q.
		Preload("Client").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&gigs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal mengambil gig")
	}

	out := make([]fiber.Map, 0, len(gigs))
	for i := range gigs {
		out = append(out, gigPayload(&gigs[i]))
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"gigs":        out,
		"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
		"currentPage": page,
		"total":       total,
	})
}

func (h *GigHandler) GetDetail(c *fiber.Ctx) error {
	id := c.Params("id")

	var gig models.Gig
	if err := h.DB.
		Preload("Client").
		Preload("AssignedFreelancer").
		First(&gig, "id = ?", id).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Gig not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"gig":     gigPayload(&gig),
	})
}

func (h *GigHandler) Update(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var gig models.Gig
	// scoped ke pemilik: gig orang lain tampak sebagai 404
	if err := h.DB.First(&gig, "id = ? AND client_id = ?", c.Params("id"), uid).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Gig not found or access denied")
	}

	var req GigReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if v := strings.TrimSpace(req.Title); v != "" {
		gig.Title = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		gig.Description = v
	}
	if req.Category != "" {
		if !models.ValidCategory(req.Category) {
			return fail(c, fiber.StatusBadRequest, "Unknown category")
		}
		gig.Category = req.Category
	}
	if req.Duration != "" {
		if !models.ValidDuration(req.Duration) {
			return fail(c, fiber.StatusBadRequest, "Unknown duration")
		}
		gig.Duration = req.Duration
	}
	if v := strings.TrimSpace(req.Location); v != "" {
		gig.Location = v
	}
	if len(req.SkillsRequired) > 0 {
		gig.SetSkills(req.SkillsRequired)
	}
	if req.Budget.Type != "" {
		bt := models.BudgetType(req.Budget.Type)
		if bt != models.BudgetFixed && bt != models.BudgetHourly {
			return fail(c, fiber.StatusBadRequest, "Budget type must be fixed or hourly")
		}
		gig.BudgetType = bt
	}
	if req.Budget.Amount != 0 {
		if req.Budget.Amount < 1 {
			return fail(c, fiber.StatusBadRequest, "Budget amount must be positive")
		}
		gig.BudgetAmount = req.Budget.Amount
	}
	if v := strings.TrimSpace(req.Budget.Currency); v != "" {
		gig.BudgetCurrency = v
	}

	cancelling := false
	if req.Status != "" {
		status := models.GigStatus(req.Status)
		if !status.Valid() {
			return fail(c, fiber.StatusBadRequest, "Unknown status")
		}
		// gig yang sudah punya lamaran accepted tidak boleh kembali active:
		// membuka lagi berarti accept kedua bisa lolos
		if status == models.GigStatusActive && gig.Status != models.GigStatusActive {
			var accepted int64
			if err := h.DB.Model(&models.Application{}).
				Where("gig_id = ? AND status = ?", gig.ID, models.ApplicationAccepted).
				Count(&accepted).Error; err != nil {
				return fail(c, fiber.StatusInternalServerError, "Gagal memperbarui gig")
			}
			if accepted > 0 {
				return fail(c, fiber.StatusBadRequest, "Cannot reopen a gig that already has an accepted application")
			}
		}
		cancelling = status == models.GigStatusCancelled && gig.Status != models.GigStatusCancelled
		gig.Status = status
		// assigned freelancer hanya ada selama in-progress / completed
		if status == models.GigStatusActive || status == models.GigStatusCancelled {
			gig.AssignedFreelancerID = nil
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&gig).Error; err != nil {
			return err
		}
		if cancelling {
			// gig batal: lamaran yang masih menggantung ikut ditolak
			if err := tx.Model(&models.Application{}).
				Where("gig_id = ? AND status = ?", gig.ID, models.ApplicationPending).
				Update("status", models.ApplicationRejected).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal memperbarui gig")
	}

	h.DB.Preload("Client").First(&gig, "id = ?", gig.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Gig updated successfully",
		"gig":     gigPayload(&gig),
	})
}

func (h *GigHandler) Delete(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var gig models.Gig
	if err := h.DB.First(&gig, "id = ? AND client_id = ?", c.Params("id"), uid).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Gig not found or access denied")
	}

	if gig.Status == models.GigStatusInProgress {
		return fail(c, fiber.StatusBadRequest, "Cannot delete a gig that is in progress")
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// lamaran ikut terhapus supaya ledger tidak menunjuk gig yang hilang
		if err := tx.Where("gig_id = ?", gig.ID).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gig).Error
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menghapus gig")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Gig deleted successfully",
	})
}

func (h *GigHandler) ListMine(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var gigs []models.Gig
	if err := h.DB.
		Where("client_id = ?", uid).
		Preload("AssignedFreelancer").
		Order("created_at DESC").
		Find(&gigs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal mengambil gig")
	}

	out := make([]fiber.Map, 0, len(gigs))
	for i := range gigs {
		out = append(out, gigPayload(&gigs[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"gigs":    out,
	})
}
