// Package config centralizes environment-driven configuration for the
// server, bot and migration binaries. A .env file is honored when present.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Server struct {
	Port        string
	DatabaseURL string
}

type Bot struct {
	APIURL     string
	SessionURL string
}

// LoadServer reads server configuration from the environment. DATABASE_URL
// wins when set; otherwise the URL is assembled from the POSTGRES_* pieces.
func LoadServer() (Server, error) {
	loadDotenv()

	cfg := Server{
		Port:        envOr("PORT", "3001"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURL()
	}
	if cfg.DatabaseURL == "" {
		return Server{}, errors.New("DATABASE_URL or POSTGRES_* variables required")
	}

	return cfg, nil
}

// LoadBot reads bot configuration. SESSION_DATABASE_URL holds the WhatsApp
// pairing session; it defaults to the main database.
func LoadBot() (Bot, error) {
	loadDotenv()

	cfg := Bot{
		APIURL:     envOr("API_URL", "http://localhost:3001"),
		SessionURL: os.Getenv("SESSION_DATABASE_URL"),
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = os.Getenv("DATABASE_URL")
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = postgresURL()
	}
	if cfg.SessionURL == "" {
		return Bot{}, errors.New("SESSION_DATABASE_URL, DATABASE_URL or POSTGRES_* variables required")
	}

	return cfg, nil
}

// MigrationsURL is the connection string used by the migration runner.
func MigrationsURL() (string, error) {
	loadDotenv()

	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	if url := postgresURL(); url != "" {
		return url, nil
	}
	return "", errors.New("DATABASE_URL or POSTGRES_* variables required")
}

func postgresURL() string {
	dbName := os.Getenv("POSTGRES_DB")
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	if dbName == "" || user == "" || host == "" || port == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadDotenv() {
	// Missing .env is the normal case in containers.
	_ = godotenv.Load()
}
