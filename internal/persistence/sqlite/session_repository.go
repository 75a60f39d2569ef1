package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using
// SQLite.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a SQLite-backed session repository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// CreateSession persists a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt.UTC().Format(time.RFC3339),
		session.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	return r.GetSession(ctx, session.Token)
}

// GetSession retrieves a session by its token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at, revoked_at
		 FROM sessions WHERE token = ?`, token)

	session, err := scanSession(row)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// RevokeSession marks a session revoked. Revoking an already revoked
// session keeps the original revocation time.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`,
		revokedAt.UTC().Format(time.RFC3339), token)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if _, err := result.RowsAffected(); err != nil {
		return persistence.Session{}, fmt.Errorf("rows affected: %w", err)
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry is at or before
// the reference time.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		reference.UTC().Format(time.RFC3339))
	if err != nil {
		return mapError(err)
	}
	return nil
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session                persistence.Session
		expiresStr, createdStr string
		revokedStr             *string
	)

	err := row.Scan(&session.ID, &session.UserID, &session.Token,
		&expiresStr, &createdStr, &revokedStr)
	if err != nil {
		return persistence.Session{}, err
	}

	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresStr); err != nil {
		return persistence.Session{}, fmt.Errorf("parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if revokedStr != nil {
		revokedAt, err := time.Parse(time.RFC3339, *revokedStr)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("parse revoked_at: %w", err)
		}
		session.RevokedAt = &revokedAt
	}
	return session, nil
}
