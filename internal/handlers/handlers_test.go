package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gigconnect/gigconnect_be/internal/config"
	"github.com/gigconnect/gigconnect_be/internal/models"
	"github.com/gigconnect/gigconnect_be/internal/router"
)

const testSecret = "test-secret"

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	// DB memory unik per test; cache=shared supaya semua koneksi pool
	// melihat database yang sama.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Application{},
		&models.Conversation{},
		&models.Message{},
	))

	cfg := config.Config{
		AppPort:         "0",
		JWTSecret:       testSecret,
		JWTExpiresMin:   60,
		FrontendBaseURL: "http://localhost:3000",
	}
	return router.New(cfg, gdb), gdb
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if resp.Body != nil {
		_ = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
	}
	return resp, out
}

// registerUser goes through the real register endpoint and returns the token
// plus the user id.
func registerUser(t *testing.T, app *fiber.App, name, email, role string) (string, string) {
	t.Helper()

	body := fiber.Map{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
		"location": "Jakarta",
	}
	if role == "freelancer" {
		body["skills"] = []string{"go", "react"}
	}

	resp, out := doJSON(t, app, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register %s: %v", email, out)

	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	user, _ := out["user"].(map[string]interface{})
	require.NotNil(t, user)
	id, _ := user["id"].(string)
	require.NotEmpty(t, id)
	return token, id
}

type gigOpts struct {
	Title    string
	Category string
	Location string
	Skills   []string
	Amount   int64
}

func createGig(t *testing.T, app *fiber.App, token string, opts gigOpts) string {
	t.Helper()

	if opts.Title == "" {
		opts.Title = "Build landing page"
	}
	if opts.Category == "" {
		opts.Category = "web-development"
	}
	if opts.Location == "" {
		opts.Location = "Remote"
	}
	if len(opts.Skills) == 0 {
		opts.Skills = []string{"go"}
	}
	if opts.Amount == 0 {
		opts.Amount = 500
	}

	resp, out := doJSON(t, app, http.MethodPost, "/api/gigs", token, fiber.Map{
		"title":           opts.Title,
		"description":     "Need help with " + opts.Title,
		"category":        opts.Category,
		"skills_required": opts.Skills,
		"budget":          fiber.Map{"type": "fixed", "amount": opts.Amount, "currency": "USD"},
		"duration":        "1-2-weeks",
		"location":        opts.Location,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create gig: %v", out)

	gig, _ := out["gig"].(map[string]interface{})
	require.NotNil(t, gig)
	id, _ := gig["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func applyToGig(t *testing.T, app *fiber.App, token, gigID string, bid int64, days int) string {
	t.Helper()

	resp, out := doJSON(t, app, http.MethodPost, "/api/applications/"+gigID+"/apply", token, fiber.Map{
		"proposal":       "I can do this",
		"bid_amount":     bid,
		"estimated_days": days,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "apply: %v", out)

	application, _ := out["application"].(map[string]interface{})
	require.NotNil(t, application)
	id, _ := application["id"].(string)
	require.NotEmpty(t, id)
	return id
}
