package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// ConfigRepository implements persistence.ConfigRepository using
// SQLite. The system configuration is a single row seeded by the
// migrations.
type ConfigRepository struct {
	store *Store
}

// NewConfigRepository creates a SQLite-backed config repository.
func NewConfigRepository(store *Store) *ConfigRepository {
	return &ConfigRepository{store: store}
}

// GetSystemConfig retrieves the singleton configuration row.
func (r *ConfigRepository) GetSystemConfig(ctx context.Context) (persistence.SystemConfig, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT auto_approve, updated_at FROM system_config WHERE id = 1`)

	var (
		config     persistence.SystemConfig
		autoApprove int
		updatedStr string
	)
	if err := row.Scan(&autoApprove, &updatedStr); err != nil {
		return persistence.SystemConfig{}, mapError(err)
	}

	config.AutoApprove = autoApprove != 0

	var err error
	if config.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.SystemConfig{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return config, nil
}

// SetAutoApprove flips the auto-approve gate.
func (r *ConfigRepository) SetAutoApprove(ctx context.Context, enabled bool, updatedAt time.Time) (persistence.SystemConfig, error) {
	value := 0
	if enabled {
		value = 1
	}

	result, err := r.store.db.ExecContext(ctx,
		`UPDATE system_config SET auto_approve = ?, updated_at = ? WHERE id = 1`,
		value, updatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return persistence.SystemConfig{}, mapError(err)
	}
	if err := requireAffected(result); err != nil {
		return persistence.SystemConfig{}, err
	}

	return r.GetSystemConfig(ctx)
}
