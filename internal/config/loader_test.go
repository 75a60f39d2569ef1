package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"RESERVE_HTTP_PORT",
			"RESERVE_SQLITE_DSN",
			"RESERVE_SESSION_TTL",
			"RESERVE_LOG_LEVEL",
			"RESERVE_ADMIN_EMAIL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const password = "bootstrap-password"
		t.Setenv("RESERVE_ADMIN_PASSWORD", password)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:reservations.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected default log level info, got %s", cfg.LogLevel)
		}
		if cfg.AdminEmail != "admin@booking.com" {
			t.Fatalf("unexpected default admin email: %q", cfg.AdminEmail)
		}
		if cfg.AdminPassword != password {
			t.Fatalf("expected admin password %q, got %q", password, cfg.AdminPassword)
		}
	})

	t.Run("errors when the admin password is missing", func(t *testing.T) {
		for _, key := range []string{
			"RESERVE_ADMIN_PASSWORD",
			"RESERVE_HTTP_PORT",
			"RESERVE_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: RESERVE_ADMIN_PASSWORD"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration, numeric, and level fields", func(t *testing.T) {
		t.Setenv("RESERVE_ADMIN_PASSWORD", "bootstrap-password")
		t.Setenv("RESERVE_HTTP_PORT", "9090")
		t.Setenv("RESERVE_SQLITE_DSN", "file:/tmp/reservations.db")
		t.Setenv("RESERVE_SESSION_TTL", "8h")
		t.Setenv("RESERVE_LOG_LEVEL", "debug")
		t.Setenv("RESERVE_ADMIN_EMAIL", "Admin@Example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/reservations.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("expected session TTL 8h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
		}
		if cfg.AdminEmail != "admin@example.com" {
			t.Fatalf("expected lowercased admin email, got %q", cfg.AdminEmail)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("RESERVE_ADMIN_PASSWORD", "bootstrap-password")
		t.Setenv("RESERVE_HTTP_PORT", "not-a-port")
		t.Setenv("RESERVE_SESSION_TTL", "-1h")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed values")
		}
	})
}
