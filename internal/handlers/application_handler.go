package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/models"
)

type ApplicationHandler struct {
	DB *gorm.DB
}

func NewApplicationHandler(db *gorm.DB) *ApplicationHandler {
	return &ApplicationHandler{DB: db}
}

type ApplyRequest struct {
	Proposal      string `json:"proposal"`
	BidAmount     int64  `json:"bid_amount"`
	EstimatedDays int    `json:"estimated_days"`
	CoverLetter   string `json:"cover_letter"`
}

func applicationPayload(a *models.Application) fiber.Map {
	out := fiber.Map{
		"id":             a.ID,
		"gig_id":         a.GigID,
		"freelancer_id":  a.FreelancerID,
		"proposal":       a.Proposal,
		"bid_amount":     a.BidAmount,
		"estimated_days": a.EstimatedDays,
		"cover_letter":   a.CoverLetter,
		"status":         a.Status,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
	if a.Freelancer != nil {
		out["freelancer"] = fiber.Map{
			"id":              a.Freelancer.ID,
			"name":            a.Freelancer.Name,
			"email":           a.Freelancer.Email,
			"profile_picture": a.Freelancer.ProfilePicture,
			"skills":          a.Freelancer.SkillList(),
			"location":        a.Freelancer.Location,
			"bio":             a.Freelancer.Bio,
		}
	}
	if a.Gig != nil {
		gigOut := fiber.Map{
			"id":     a.Gig.ID,
			"title":  a.Gig.Title,
			"status": a.Gig.Status,
			"budget": fiber.Map{
				"type":     a.Gig.BudgetType,
				"amount":   a.Gig.BudgetAmount,
				"currency": a.Gig.BudgetCurrency,
			},
		}
		if a.Gig.Client != nil {
			gigOut["client"] = userSummary(a.Gig.Client)
		}
		out["gig"] = gigOut
	}
	return out
}

// Apply creates a pending application on an active gig. The composite unique
// index on (gig_id, freelancer_id) decides ties between concurrent applies,
// and the insert re-checks the gig status transactionally so a race against
// accept cannot leave a pending application on a closed gig.
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	uid, _ := c.Locals("userId").(string)
	freelancerID, err := uuid.Parse(uid)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user ID")
	}

	gigID, err := uuid.Parse(c.Params("gigId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid gig ID")
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var gig models.Gig
	if err := h.DB.First(&gig, "id = ?", gigID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Gig not found")
	}

	if strings.TrimSpace(req.Proposal) == "" {
		return fail(c, fiber.StatusBadRequest, "Proposal is required")
	}
	if req.BidAmount < 1 {
		return fail(c, fiber.StatusBadRequest, "Bid amount must be positive")
	}
	if req.EstimatedDays < 1 {
		return fail(c, fiber.StatusBadRequest, "Estimated days must be at least 1")
	}

	var existing models.Application
	if err := h.DB.Where("gig_id = ? AND freelancer_id = ?", gigID, freelancerID).
		First(&existing).Error; err == nil {
		return fail(c, fiber.StatusBadRequest, "You have already applied to this gig")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusInternalServerError, "Gagal memeriksa lamaran")
	}

	app := models.Application{
		GigID:         gigID,
		FreelancerID:  freelancerID,
		Proposal:      req.Proposal,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
		CoverLetter:   req.CoverLetter,
		Status:        models.ApplicationPending,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		// status gig dicek di transaksi yang sama dengan insert; apply yang
		// balapan dengan accept ikut ter-rollback, bukan menggantung pending
		var g models.Gig
		if err := tx.First(&g, "id = ?", gigID).Error; err != nil {
			return err
		}
		if g.Status != models.GigStatusActive {
			return fiber.NewError(fiber.StatusBadRequest, "This gig is no longer accepting applications")
		}
		return nil
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return fail(c, e.Code, e.Message)
		}
		if isDuplicate(err) {
			// kalah balapan dengan apply lain untuk pasangan yang sama
			return fail(c, fiber.StatusBadRequest, "You have already applied to this gig")
		}
		return fail(c, fiber.StatusInternalServerError, "Gagal menyimpan lamaran")
	}

	h.DB.Preload("Freelancer").First(&app, "id = ?", app.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": applicationPayload(&app),
	})
}

// Accept is the one multi-entity transition in the system: this application
// flips to accepted, the gig moves to in-progress with the freelancer
// assigned, and every sibling pending application is rejected, all in one
// transaction. The status conditions in the UPDATEs are the compare-and-swap
// that lets exactly one concurrent accept per gig win.
func (h *ApplicationHandler) Accept(c *fiber.Ctx) error {
	uid, _ := c.Locals("userId").(string)

	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid application ID")
	}

	var app models.Application
	if err := h.DB.Preload("Gig").First(&app, "id = ?", appID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}
	if app.Gig == nil || app.Gig.ClientID.String() != uid {
		return fail(c, fiber.StatusForbidden, "Access denied - you do not own this gig")
	}
	if app.Status != models.ApplicationPending {
		return fail(c, fiber.StatusBadRequest, "Application is not in pending status")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// satu gig tidak pernah punya dua lamaran accepted, apapun yang
		// terjadi pada status gignya sejak itu
		var accepted int64
		if err := tx.Model(&models.Application{}).
			Where("gig_id = ? AND status = ?", app.GigID, models.ApplicationAccepted).
			Count(&accepted).Error; err != nil {
			return err
		}
		if accepted > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "This gig already has an accepted application")
		}

		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
			Update("status", models.ApplicationAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Application is not in pending status")
		}

		res = tx.Model(&models.Gig{}).
			Where("id = ? AND status = ?", app.GigID, models.GigStatusActive).
			Updates(map[string]interface{}{
				"status":                 models.GigStatusInProgress,
				"assigned_freelancer_id": app.FreelancerID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// gig sudah keburu berubah status, batalkan semuanya
			return fiber.NewError(fiber.StatusBadRequest, "This gig is no longer accepting applications")
		}

		return tx.Model(&models.Application{}).
			Where("gig_id = ? AND id <> ? AND status = ?", app.GigID, app.ID, models.ApplicationPending).
			Update("status", models.ApplicationRejected).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return fail(c, e.Code, e.Message)
		}
		return fail(c, fiber.StatusInternalServerError, "Gagal menerima lamaran")
	}

	h.DB.Preload("Freelancer").Preload("Gig").First(&app, "id = ?", app.ID)

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Application accepted successfully",
		"application": applicationPayload(&app),
	})
}

func (h *ApplicationHandler) Reject(c *fiber.Ctx) error {
	uid, _ := c.Locals("userId").(string)

	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid application ID")
	}

	var app models.Application
	if err := h.DB.Preload("Gig").First(&app, "id = ?", appID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}
	if app.Gig == nil || app.Gig.ClientID.String() != uid {
		return fail(c, fiber.StatusForbidden, "Access denied - you do not own this gig")
	}

	res := h.DB.Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
		Update("status", models.ApplicationRejected)
	if res.Error != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menolak lamaran")
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusBadRequest, "Application is not in pending status")
	}

	h.DB.Preload("Freelancer").First(&app, "id = ?", app.ID)

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Application rejected successfully",
		"application": applicationPayload(&app),
	})
}

func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var app models.Application
	// scoped ke pemilik: lamaran orang lain tampak sebagai 404
	if err := h.DB.First(&app, "id = ? AND freelancer_id = ?", c.Params("id"), uid).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}

	res := h.DB.Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
		Update("status", models.ApplicationWithdrawn)
	if res.Error != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menarik lamaran")
	}
	if res.RowsAffected == 0 {
		return fail(c, fiber.StatusBadRequest, "Cannot withdraw application in current status")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Application withdrawn successfully",
	})
}

func (h *ApplicationHandler) ListForGig(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var gig models.Gig
	if err := h.DB.First(&gig, "id = ? AND client_id = ?", c.Params("gigId"), uid).Error; err != nil {
		return fail(c, fiber.StatusNotFound, "Gig not found or access denied")
	}

	var apps []models.Application
	if err := h.DB.
		Where("gig_id = ?", gig.ID).
		Preload("Freelancer").
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal mengambil lamaran")
	}

	out := make([]fiber.Map, 0, len(apps))
	for i := range apps {
		out = append(out, applicationPayload(&apps[i]))
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"applications": out,
		"gig": fiber.Map{
			"id":     gig.ID,
			"title":  gig.Title,
			"status": gig.Status,
		},
	})
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var apps []models.Application
	if err := h.DB.
		Where("freelancer_id = ?", uid).
		Preload("Gig").
		Preload("Gig.Client").
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal mengambil lamaran")
	}

	out := make([]fiber.Map, 0, len(apps))
	for i := range apps {
		out = append(out, applicationPayload(&apps[i]))
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"applications": out,
	})
}

// ListForClient returns every application across the client's gigs, plus a
// grouped-by-gig view for the dashboard.
func (h *ApplicationHandler) ListForClient(c *fiber.Ctx) error {
	uid := c.Locals("userId")

	var gigs []models.Gig
	if err := h.DB.Where("client_id = ?", uid).Find(&gigs).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal mengambil gig")
	}

	gigIDs := make([]uuid.UUID, 0, len(gigs))
	for _, g := range gigs {
		gigIDs = append(gigIDs, g.ID)
	}

	var apps []models.Application
	if len(gigIDs) > 0 {
		if err := h.DB.
			Where("gig_id IN ?", gigIDs).
			Preload("Freelancer").
			Preload("Gig").
			Order("created_at DESC").
			Find(&apps).Error; err != nil {
			return fail(c, fiber.StatusInternalServerError, "Gagal mengambil lamaran")
		}
	}

	out := make([]fiber.Map, 0, len(apps))
	grouped := map[uuid.UUID]fiber.Map{}
	order := []uuid.UUID{}
	for i := range apps {
		p := applicationPayload(&apps[i])
		out = append(out, p)

		gid := apps[i].GigID
		if _, ok := grouped[gid]; !ok {
			grouped[gid] = fiber.Map{
				"gig":          p["gig"],
				"applications": []fiber.Map{},
			}
			order = append(order, gid)
		}
		grouped[gid]["applications"] = append(grouped[gid]["applications"].([]fiber.Map), p)
	}

	byGig := make([]fiber.Map, 0, len(order))
	for _, gid := range order {
		byGig = append(byGig, grouped[gid])
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"applications":      out,
		"applicationsByGig": byGig,
		"totalApplications": len(out),
	})
}

// Stats counts applications by status, scoped to the caller's side of the
// marketplace: own applications for a freelancer, applications against own
// gigs for a client.
func (h *ApplicationHandler) Stats(c *fiber.Ctx) error {
	uid := c.Locals("userId")
	role, _ := c.Locals("role").(string)

	q := h.DB.Model(&models.Application{})
	switch models.Role(role) {
	case models.RoleFreelancer:
		q = q.Where("freelancer_id = ?", uid)
	case models.RoleClient:
		q = q.Where("gig_id IN (?)", h.DB.Model(&models.Gig{}).Select("id").Where("client_id = ?", uid))
	default:
		return c.JSON(fiber.Map{"success": true, "stats": fiber.Map{}})
	}

	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, "Gagal menghitung statistik")
	}

	stats := fiber.Map{
		"total":     int64(0),
		"pending":   int64(0),
		"accepted":  int64(0),
		"rejected":  int64(0),
		"withdrawn": int64(0),
	}
	var total int64
	for _, r := range rows {
		stats[string(r.Status)] = r.Count
		total += r.Count
	}
	stats["total"] = total

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
