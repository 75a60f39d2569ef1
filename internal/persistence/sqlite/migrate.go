package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step. Statements of a step are
// applied inside a single transaction together with the version
// bookkeeping row, so a failed step leaves the schema untouched.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
				display_name  TEXT NOT NULL,
				is_admin      INTEGER NOT NULL DEFAULT 0,
				password_hash TEXT NOT NULL,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token      TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				capacity    INTEGER NOT NULL CHECK (capacity > 0),
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS catering_items (
				id         TEXT PRIMARY KEY,
				kind       TEXT NOT NULL CHECK (kind IN ('FOOD', 'SNACK')),
				name       TEXT NOT NULL,
				created_at TEXT NOT NULL,
				UNIQUE (kind, name)
			)`,
			`CREATE TABLE IF NOT EXISTS reservations (
				id               TEXT PRIMARY KEY,
				room_id          TEXT NOT NULL REFERENCES rooms(id),
				requester_id     TEXT NOT NULL REFERENCES users(id),
				reservation_date TEXT NOT NULL,
				session          TEXT NOT NULL CHECK (session IN ('MORNING', 'AFTERNOON', 'FULL_DAY')),
				letter_number    TEXT NOT NULL,
				agenda           TEXT NOT NULL,
				description      TEXT NOT NULL DEFAULT '',
				meeting_type     TEXT NOT NULL,
				note             TEXT,
				document_url     TEXT,
				food_names       TEXT NOT NULL DEFAULT '[]',
				snack_names      TEXT NOT NULL DEFAULT '[]',
				status           TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
				rejection_reason TEXT,
				created_at       TEXT NOT NULL,
				updated_at       TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_reservations_room_date ON reservations (room_id, reservation_date)`,
			`CREATE INDEX IF NOT EXISTS idx_reservations_requester ON reservations (requester_id)`,
			`CREATE TABLE IF NOT EXISTS system_config (
				id           INTEGER PRIMARY KEY CHECK (id = 1),
				auto_approve INTEGER NOT NULL DEFAULT 0,
				updated_at   TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "seed system config",
		statements: []string{
			`INSERT INTO system_config (id, auto_approve, updated_at)
				VALUES (1, 0, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
				ON CONFLICT (id) DO NOTHING`,
		},
	},
}

// Migrate brings the schema up to the latest version. Applied versions
// are tracked in schema_migrations and skipped on subsequent runs.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("initialize schema_migrations: %w", err)
	}

	current, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

func (s *Store) currentSchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
			m.version, m.name,
		)
		return err
	})
}
