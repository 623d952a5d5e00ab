package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string
	Env  string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string
	AdminID   int64

	// BlockAPIURL is the endpoint serving recent chain blocks.
	BlockAPIURL string

	// LogDir holds the plain-text audit log files.
	LogDir string

	MinWithdrawal int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		BlockAPIURL:   getEnv("BLOCK_API_URL", "https://apilist.tronscan.org/api/block"),
		LogDir:        getEnv("LOG_DIR", "logs"),
		MinWithdrawal: 50000,
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}
	cfg.RedisDB = db

	if v := os.Getenv("ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID: %v", err)
		}
		cfg.AdminID = id
	}

	if v := os.Getenv("MIN_WITHDRAWAL"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_WITHDRAWAL: %v", err)
		}
		cfg.MinWithdrawal = n
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
