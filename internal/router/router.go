package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/config"
	"github.com/gigconnect/gigconnect_be/internal/handlers"
	"github.com/gigconnect/gigconnect_be/internal/middleware"
)

// New builds the app with every route wired; main and the handler tests share
// this so the tested surface is the served surface.
func New(cfg config.Config, gdb *gorm.DB) *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	gigH := handlers.NewGigHandler(gdb)
	appH := handlers.NewApplicationHandler(gdb)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/auth/google", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/auth/google/url", googleH.GoogleURL)
	api.Get("/gigs", gigH.ListPublic)
	api.Get("/gigs/:id", gigH.GetDetail)

	// protected (JWT bearer)
	protected := api.Group("",
		middleware.JWTFromHeader(cfg.JWTSecret),
		middleware.AttachUserLocals(gdb),
	)

	protected.Get("/auth/me", authH.Me)
	protected.Put("/auth/update-profile", authH.UpdateProfile)

	// client only
	protected.Post("/gigs", middleware.RequireRoles("client"), gigH.Create)
	protected.Put("/gigs/:id", middleware.RequireRoles("client"), gigH.Update)
	protected.Delete("/gigs/:id", middleware.RequireRoles("client"), gigH.Delete)
	protected.Get("/gigs/client/my-gigs", middleware.RequireRoles("client"), gigH.ListMine)

	protected.Get("/applications/gig/:gigId", middleware.RequireRoles("client"), appH.ListForGig)
	protected.Get("/applications/client/my-applications", middleware.RequireRoles("client"), appH.ListForClient)
	protected.Put("/applications/:id/accept", middleware.RequireRoles("client"), appH.Accept)
	protected.Put("/applications/:id/reject", middleware.RequireRoles("client"), appH.Reject)

	// freelancer only
	protected.Post("/applications/:gigId/apply", middleware.RequireRoles("freelancer"), appH.Apply)
	protected.Get("/applications/my-applications", middleware.RequireRoles("freelancer"), appH.ListMine)
	protected.Put("/applications/:id/withdraw", middleware.RequireRoles("freelancer"), appH.Withdraw)

	protected.Get("/applications/stats", appH.Stats)

	return app
}
