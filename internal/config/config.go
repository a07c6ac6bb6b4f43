package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	LogFile   string
}

func Load() Config {
	// .env is optional; deployments normally set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getenv("PORT", "8080"),
		DBDSN:     getenv("DB_DSN", "shopkart.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogFile:   getenv("LOG_FILE", ""),
	}

	// No fallback secret: refuse to start without one.
	if cfg.JWTSecret == "" {
		log.Fatal("[config] JWT_SECRET is required")
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.LogFile)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
