package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL       string
	DatabaseDriver string // postgres | sqlite3 | memory
	DatabaseURL    string

	AllowedRooms []string
	MessagesDir  string

	SessionTTL       time.Duration
	HistoryLimit     int
	ComputerDelay    time.Duration
	MandatoryCapture bool
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:      ":8080",
		SessionTTL:    time.Hour,
		HistoryLimit:  10,
		ComputerDelay: 800 * time.Millisecond,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ROOMS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedRooms = append(cfg.AllowedRooms, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHECKERS_SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_COMPUTER_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ComputerDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_MANDATORY_CAPTURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MandatoryCapture = b
		}
	}

	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = driverFromURL(cfg.DatabaseURL)
	}
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite3":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for driver %s", cfg.DatabaseDriver)
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

func driverFromURL(dsn string) string {
	switch {
	case dsn == "":
		return "memory"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return "sqlite3"
	default:
		return "postgres"
	}
}
