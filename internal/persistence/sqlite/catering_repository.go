package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// CateringRepository implements persistence.CateringRepository using
// SQLite.
type CateringRepository struct {
	store *Store
}

// NewCateringRepository creates a SQLite-backed catering repository.
func NewCateringRepository(store *Store) *CateringRepository {
	return &CateringRepository{store: store}
}

// CreateCateringItem inserts a catalog item.
func (r *CateringRepository) CreateCateringItem(ctx context.Context, item persistence.CateringItem) error {
	if item.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO catering_items (id, kind, name, created_at)
		 VALUES (?, ?, ?, ?)`,
		item.ID,
		item.Kind,
		item.Name,
		item.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteCateringItem removes a catalog item. Reservations keep their
// name snapshots.
func (r *CateringRepository) DeleteCateringItem(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM catering_items WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetCateringItem retrieves a catalog item by ID.
func (r *CateringRepository) GetCateringItem(ctx context.Context, id string) (persistence.CateringItem, error) {
	if id == "" {
		return persistence.CateringItem{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, kind, name, created_at FROM catering_items WHERE id = ?`, id)

	item, err := scanCateringItem(row)
	if err != nil {
		return persistence.CateringItem{}, mapError(err)
	}
	return item, nil
}

// ListCateringItems returns the catalog, optionally narrowed to one
// kind, ordered by name.
func (r *CateringRepository) ListCateringItems(ctx context.Context, kind string) ([]persistence.CateringItem, error) {
	query := `SELECT id, kind, name, created_at FROM catering_items`
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY name, id"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return scanCateringItems(rows)
}

// ListCateringItemsByIDs returns the catalog items matching the given
// IDs. Missing IDs are simply absent from the result.
func (r *CateringRepository) ListCateringItemsByIDs(ctx context.Context, ids []string) ([]persistence.CateringItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, kind, name, created_at
		FROM catering_items WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return scanCateringItems(rows)
}

func scanCateringItems(rows *sql.Rows) ([]persistence.CateringItem, error) {
	var items []persistence.CateringItem
	for rows.Next() {
		item, err := scanCateringItem(rows)
		if err != nil {
			return nil, mapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func scanCateringItem(row rowScanner) (persistence.CateringItem, error) {
	var (
		item       persistence.CateringItem
		createdStr string
	)

	err := row.Scan(&item.ID, &item.Kind, &item.Name, &createdStr)
	if err != nil {
		return persistence.CateringItem{}, err
	}

	if item.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.CateringItem{}, fmt.Errorf("parse created_at: %w", err)
	}
	return item, nil
}
