package utils

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables (optionally via a .env file).
type Config struct {
	Port string

	UpstreamURL   string
	UpstreamToken string
	CacheTTL      time.Duration

	ModelServiceURL string

	AdminUsername     string
	AdminPasswordHash string // bcrypt
	JWTSecret         string
	JWTIssuer         string
	JWTDuration       time.Duration
}

// Load reads the .env file (when present) and returns a populated
// Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, falling back to system env vars")
	}

	return &Config{
		Port: getEnv("TOURISM_PORT", "8080"),

		UpstreamURL:   getEnv("TOURISM_UPSTREAM_URL", ""),
		UpstreamToken: getEnv("TOURISM_UPSTREAM_TOKEN", ""),
		CacheTTL:      time.Duration(getEnvInt("TOURISM_CACHE_TTL_SECONDS", 1800)) * time.Second,

		ModelServiceURL: getEnv("MODEL_SERVICE_URL", "http://localhost:8001"),

		AdminUsername:     getEnv("TOURISM_ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("TOURISM_ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("TOURISM_JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:         getEnv("TOURISM_JWT_ISSUER", "tourstats"),
		JWTDuration:       time.Duration(getEnvInt("TOURISM_JWT_TTL_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
