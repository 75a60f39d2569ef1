package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the
// reservation service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionTTL    time.Duration
	LogLevel      slog.Level
	AdminEmail    string
	AdminPassword string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults. The bootstrap
// administrator password has no default; the first run refuses to seed
// an account with a guessable credential.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:reservations.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
		LogLevel:   slog.LevelInfo,
		AdminEmail: "admin@booking.com",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("RESERVE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "RESERVE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("RESERVE_LOG_LEVEL")); levelValue != "" {
		level, err := parseLogLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "RESERVE_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if email := strings.TrimSpace(os.Getenv("RESERVE_ADMIN_EMAIL")); email != "" {
		cfg.AdminEmail = strings.ToLower(email)
	}

	if password := strings.TrimSpace(os.Getenv("RESERVE_ADMIN_PASSWORD")); password == "" {
		missing = append(missing, "RESERVE_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToUpper(value) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", value)
	}
}
