package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
}

func Config(key string) string {
	loadEnv()
	return os.Getenv(key)
}

// Settings is the process-wide configuration. It is built once at startup
// and never mutated afterwards.
type Settings struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	PublicBaseURL string

	IntaSendPublishableKey string
	IntaSendSecretKey      string
	IntaSendTestMode       bool
	IntaSendBaseURL        string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CloudinaryURL string

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	ReconcileCron string
}

var requiredKeys = []string{
	"INTASEND_PUBLISHABLE_KEY",
	"INTASEND_SECRET_KEY",
	"INTASEND_TEST_MODE",
	"DATABASE_URL",
	"JWT_SECRET",
}

// Load reads every setting from the environment. A missing required key is a
// deployment error and is reported as such.
func Load() (Settings, error) {
	loadEnv()

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Settings{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	testMode, err := strconv.ParseBool(os.Getenv("INTASEND_TEST_MODE"))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid INTASEND_TEST_MODE %q: %w", os.Getenv("INTASEND_TEST_MODE"), err)
	}

	return Settings{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		IntaSendPublishableKey: os.Getenv("INTASEND_PUBLISHABLE_KEY"),
		IntaSendSecretKey:      os.Getenv("INTASEND_SECRET_KEY"),
		IntaSendTestMode:       testMode,
		IntaSendBaseURL:        os.Getenv("INTASEND_BASE_URL"),

		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		EmailSender:     os.Getenv("EMAIL_SENDER"),
		EmailSenderName: os.Getenv("EMAIL_SENDER_NAME"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Administrator"),

		ReconcileCron: getEnv("RECONCILE_CRON", "*/5 * * * *"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
