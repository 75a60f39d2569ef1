package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// CreateUser inserts an account.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, is_admin, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		boolToInt(user.IsAdmin),
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateUser updates an account's profile fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE users SET email = ?, display_name = ?, is_admin = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email,
		user.DisplayName,
		boolToInt(user.IsAdmin),
		user.UpdatedAt.UTC().Format(time.RFC3339),
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// UpdatePasswordHash replaces an account's password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash,
		updatedAt.UTC().Format(time.RFC3339),
		userID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetUser retrieves an account by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

// GetUserByEmail retrieves an account by email, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, password_hash, created_at, updated_at
		 FROM users WHERE email = ? COLLATE NOCASE`, email)

	user, err := scanUser(row)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

// ListUsers returns all accounts ordered by email.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, email, display_name, is_admin, password_hash, created_at, updated_at
		 FROM users ORDER BY email, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// CountUsers returns the number of accounts.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                   persistence.User
		isAdmin                int
		createdStr, updatedStr string
	)

	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &isAdmin,
		&user.PasswordHash, &createdStr, &updatedStr)
	if err != nil {
		return persistence.User{}, err
	}

	user.IsAdmin = isAdmin != 0

	if user.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.User{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
