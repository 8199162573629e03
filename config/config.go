package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	Port       string
	Env        string

	JWTSecret string
	JWTExpiry time.Duration

	BcryptCost       int
	MaxLoginAttempts int
	LockDuration     time.Duration
	ResetTokenExpiry time.Duration
	MaxUploadSize    int64
	UploadDir        string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	FrontendURL  string

	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig loads configuration from environment variables. A missing
// .env file is not an error; values may come from the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "bookstore"),
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 168)) * time.Hour,

		BcryptCost:       getEnvInt("BCRYPT_COST", 10),
		MaxLoginAttempts: getEnvInt("MAX_LOGIN_ATTEMPTS", 5),
		LockDuration:     time.Duration(getEnvInt("LOCK_DURATION_MINUTES", 15)) * time.Minute,
		ResetTokenExpiry: time.Duration(getEnvInt("RESET_TOKEN_EXPIRY_MINUTES", 5)) * time.Minute,
		MaxUploadSize:    int64(getEnvInt("MAX_UPLOAD_SIZE", 5*1024*1024)),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
