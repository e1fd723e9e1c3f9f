package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/gigconnect/gigconnect_be/internal/models"
	"github.com/gigconnect/gigconnect_be/internal/utils"
)

type GoogleOAuthHandler struct {
	DB              *gorm.DB
	JWTSecret       string
	Expires         int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func (h *GoogleOAuthHandler) configured() bool {
	return h.GoogleClientID != "" && h.GoogleSecret != ""
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	if !h.configured() {
		return fail(c, fiber.StatusServiceUnavailable, "Google OAuth is not configured")
	}

	st := randomState(32)
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    st,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

// GoogleURL hands the consent URL to the FE login button instead of
// redirecting, for clients that open the flow in a popup.
func (h *GoogleOAuthHandler) GoogleURL(c *fiber.Ctx) error {
	if !h.configured() {
		return fail(c, fiber.StatusServiceUnavailable, "Google OAuth is not configured")
	}
	st := randomState(32)
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    st,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})
	return c.JSON(fiber.Map{
		"success": true,
		"authUrl": h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline),
	})
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) loginRedirect(c *fiber.Ctx, errCode string) error {
	u := h.FrontendBaseURL + "/login?error=" + url.QueryEscape(errCode)
	return c.Redirect(u, http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.configured() {
		return h.loginRedirect(c, "google_not_configured")
	}

	code := c.Query("code")
	state := c.Query("state")
	stCookie := c.Cookies("oauth_state")
	if code == "" || state == "" || stCookie == "" || stCookie != state {
		return h.loginRedirect(c, "auth_failed")
	}

	tok, err := h.oauthCfg().Exchange(c.Context(), code)
	if err != nil {
		return h.loginRedirect(c, "auth_failed")
	}

	client := h.oauthCfg().Client(c.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return h.loginRedirect(c, "auth_failed")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return h.loginRedirect(c, "auth_failed")
	}

	u, err := h.reconcile(&gu)
	if err != nil {
		log.Println("Google reconcile error:", err)
		return h.loginRedirect(c, "auth_failed")
	}

	jwtToken, err := utils.SignJWT(h.JWTSecret, u.ID.String(), h.Expires)
	if err != nil {
		return h.loginRedirect(c, "auth_failed")
	}

	c.Cookie(&fiber.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1, HTTPOnly: true, SameSite: "Lax"})

	userData, _ := json.Marshal(userPayload(u))
	q := "token=" + url.QueryEscape(jwtToken) + "&user=" + url.QueryEscape(string(userData))

	// Akun baru atau akun lama tanpa role harus lewat pemilihan role dulu.
	needsRoleSelection := u.Role == models.RoleUnset || !u.IsProfileComplete
	if needsRoleSelection {
		return c.Redirect(h.FrontendBaseURL+"/select-role?"+q, http.StatusTemporaryRedirect)
	}
	return c.Redirect(h.FrontendBaseURL+"/auth/success?"+q+"&redirect=dashboard", http.StatusTemporaryRedirect)
}

// reconcile matches the Google assertion against the user table:
// by google_id first, then by email (linking the account), else a fresh
// role-less user that will be routed through profile completion.
func (h *GoogleOAuthHandler) reconcile(gu *googleUserInfo) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	name := strings.TrimSpace(gu.Name)
	if gu.ID == "" || email == "" {
		return nil, errors.New("incomplete google profile")
	}

	var u models.User
	err := h.DB.Where("google_id = ?", gu.ID).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = h.DB.Where("email = ?", email).First(&u).Error
	if err == nil {
		// akun password yang sudah ada, link ke Google
		gid := gu.ID
		u.GoogleID = &gid
		u.IsGoogleAuth = true
		if gu.Picture != "" {
			u.ProfilePicture = gu.Picture
		}
		if err := h.DB.Save(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	gid := gu.ID
	u = models.User{
		Name:              name,
		Email:             email,
		ProfilePicture:    gu.Picture,
		GoogleID:          &gid,
		IsGoogleAuth:      true,
		Role:              models.RoleUnset,
		IsProfileComplete: false,
	}
	u.SetSkills(nil)
	if err := h.DB.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
