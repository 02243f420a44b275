package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	TokenTTL  time.Duration
	SaltRound int

	RateLimitMax       int
	RateLimitWindow    time.Duration
	RateLimitSweepEach time.Duration

	AllowOrigins string // comma-separated CORS allow-list
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults.
// It refuses to start the process on an unusable configuration.
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	AppConfig = cfg
}

// buildConfig assembles and validates configuration from the environment.
func buildConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		SaltRound: getEnvInt("SALT_ROUND", 10),

		RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RateLimitSweepEach: time.Duration(getEnvInt("RATE_LIMIT_SWEEP_MINUTES", 5)) * time.Minute,

		AllowOrigins: getEnv("ALLOW_ORIGINS", "http://localhost:5173"),
	}

	// The signing key is a hard startup requirement, not a runtime concern.
	if len(cfg.JWTKey) < 32 {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters, got %d", len(cfg.JWTKey))
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	if cfg.RateLimitMax < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be at least 1")
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}

	// The sweeper only evicts conclusively expired windows, so it must run on
	// a coarser cadence than the window itself.
	if cfg.RateLimitSweepEach <= cfg.RateLimitWindow {
		return nil, fmt.Errorf("rate limit sweep interval (%s) must be longer than the window (%s)",
			cfg.RateLimitSweepEach, cfg.RateLimitWindow)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
