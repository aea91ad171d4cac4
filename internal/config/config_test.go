package config

import (
	"testing"
	"time"
)

var allKeys = []string{
	"HTTP_ADDR", "REDIS_URL", "DATABASE_DRIVER", "DATABASE_URL", "ALLOWED_ROOMS", "MESSAGES_DIR",
	"CHECKERS_SESSION_TTL", "CHECKERS_HISTORY_LIMIT", "CHECKERS_COMPUTER_DELAY_MS", "CHECKERS_MANDATORY_CAPTURE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.SessionTTL != time.Hour || cfg.HistoryLimit != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ComputerDelay != 800*time.Millisecond || cfg.MandatoryCapture || cfg.DatabaseDriver != "memory" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATABASE_URL", "file:checkers.db?cache=shared")
	t.Setenv("ALLOWED_ROOMS", " a, ,b ")
	t.Setenv("CHECKERS_SESSION_TTL", "120")
	t.Setenv("CHECKERS_COMPUTER_DELAY_MS", "0")
	t.Setenv("CHECKERS_MANDATORY_CAPTURE", "true")
	t.Setenv("CHECKERS_HISTORY_LIMIT", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Fatalf("driver = %s", cfg.DatabaseDriver)
	}
	if len(cfg.AllowedRooms) != 2 || cfg.AllowedRooms[0] != "a" || cfg.AllowedRooms[1] != "b" {
		t.Fatalf("rooms = %v", cfg.AllowedRooms)
	}
	if cfg.SessionTTL != 2*time.Minute || cfg.ComputerDelay != 0 || !cfg.MandatoryCapture || cfg.HistoryLimit != 10 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing redis", map[string]string{}},
		{"postgres without url", map[string]string{"REDIS_URL": "redis://x", "DATABASE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"REDIS_URL": "redis://x", "DATABASE_DRIVER": "mysql"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
