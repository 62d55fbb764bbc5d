package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=backoffice port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	LogLevel    string

	ShiftTimezone      string
	ReconcileTolerance float64

	LoyverseBaseURL      string
	LoyverseAccessToken  string
	LoyverseStoreID      string
	LoyversePageSize     int
	LoyversePageDelayMs  int
	LoyverseMinorUnits   bool
	LoyverseMaxRetries   int
	LoyverseRetryDelayMs int

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	SchedulerEnabled bool
	SchedulerSpec    string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ShiftTimezone:      getEnv("SHIFT_TIMEZONE", "Asia/Bangkok"),
		ReconcileTolerance: getEnvFloat("RECONCILE_TOLERANCE", 50),

		LoyverseBaseURL:      strings.TrimRight(getEnv("LOYVERSE_BASE_URL", "https://api.loyverse.com/v1.0"), "/"),
		LoyverseAccessToken:  getEnv("LOYVERSE_ACCESS_TOKEN", ""),
		LoyverseStoreID:      getEnv("LOYVERSE_STORE_ID", ""),
		LoyversePageSize:     getEnvInt("LOYVERSE_PAGE_SIZE", 250),
		LoyversePageDelayMs:  getEnvInt("LOYVERSE_PAGE_DELAY_MS", 100),
		LoyverseMinorUnits:   getEnvBool("LOYVERSE_MINOR_UNITS", false),
		LoyverseMaxRetries:   getEnvInt("LOYVERSE_MAX_RETRIES", 3),
		LoyverseRetryDelayMs: getEnvInt("LOYVERSE_RETRY_DELAY_MS", 500),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AIBaseURL: strings.TrimRight(getEnv("AI_BASE_URL", "https://api.openai.com/v1"), "/"),
		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),

		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerSpec:    getEnv("SCHEDULER_SPEC", "5 3 * * *"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the local default")
	}
	if cfg.LoyverseAccessToken == "" {
		log.Println("[WARN] LOYVERSE_ACCESS_TOKEN is not set, shift processing will fail upstream")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}
