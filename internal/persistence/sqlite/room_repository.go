package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	store *Store
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

// CreateRoom inserts a room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, description, capacity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Name,
		room.Description,
		room.Capacity,
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateRoom updates a room's mutable fields.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, description = ?, capacity = ?, updated_at = ?
		 WHERE id = ?`,
		room.Name,
		room.Description,
		room.Capacity,
		room.UpdatedAt.UTC().Format(time.RFC3339),
		room.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	return getRoom(ctx, r.store.db, id)
}

// ListRooms returns all rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, description, capacity, created_at, updated_at
		 FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room. The delete fails with ErrConflict while
// any pending or approved reservation references the room.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		var active int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservations
			 WHERE room_id = ? AND status IN ('PENDING', 'APPROVED')`, id).Scan(&active)
		if err != nil {
			return mapError(err)
		}
		if active > 0 {
			return persistence.ErrConflict
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
		if err != nil {
			return mapError(err)
		}
		return requireAffected(result)
	})
}

func getRoom(ctx context.Context, q queryer, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := q.QueryRowContext(ctx,
		`SELECT id, name, description, capacity, created_at, updated_at
		 FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                   persistence.Room
		createdStr, updatedStr string
	)

	err := row.Scan(&room.ID, &room.Name, &room.Description, &room.Capacity, &createdStr, &updatedStr)
	if err != nil {
		return persistence.Room{}, err
	}

	if room.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Room{}, fmt.Errorf("parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Room{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return room, nil
}
