package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	Env             string
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	StripeSecretKey string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	ContactEmail    string
	CORSOrigins     []string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:            getEnvOrDefault("PORT", "5000"),
		Env:             getEnvOrDefault("APP_ENV", "development"),
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 24, time.Hour),
		StripeSecretKey: getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		SMTPHost:        getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:        getIntEnv("SMTP_PORT", 587),
		SMTPUser:        getEnvOrDefault("SMTP_USER", ""),
		SMTPPassword:    getEnvOrDefault("SMTP_PASSWORD", ""),
		ContactEmail:    getEnvOrDefault("CONTACT_EMAIL", ""),
		CORSOrigins:     getListEnv("CORS_ORIGINS", "*"),
	}
}

// IsProduction controls whether internal error details are included in responses.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnvOrDefault(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
