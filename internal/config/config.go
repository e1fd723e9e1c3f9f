package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort         string
	DBDSN           string
	JWTSecret       string
	JWTExpiresMin   int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

// Load reads the process environment. DB_DSN and JWT_SECRET are required;
// the Google keys may stay empty, the OAuth routes answer 503 until set.
func Load() Config {
	// default 7 hari, sama dengan masa berlaku token
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	return Config{
		AppPort:         get("APP_PORT", "8080"),
		DBDSN:           must("DB_DSN"),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   expires,
		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
