package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository
// using SQLite.
type ReservationRepository struct {
	store *Store
}

// NewReservationRepository creates a SQLite-backed reservation
// repository.
func NewReservationRepository(store *Store) *ReservationRepository {
	return &ReservationRepository{store: store}
}

// InTransaction runs fn against a transaction-scoped reservation view.
// All conflict checks and status writes issued through the view commit
// or roll back together.
func (r *ReservationRepository) InTransaction(ctx context.Context, fn func(tx persistence.ReservationTx) error) error {
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&reservationTx{tx: tx})
	})
}

// GetReservation retrieves a reservation by ID outside a transaction.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	return getReservation(ctx, r.store.db, id)
}

// ListForRoomAndDate returns the reservations of one room on one date,
// optionally narrowed to the given statuses.
func (r *ReservationRepository) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]persistence.Reservation, error) {
	return listForRoomAndDate(ctx, r.store.db, roomID, date, statuses)
}

// ListReservations returns reservations matching the filter, newest
// first.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.RequesterID != "" {
		conditions = append(conditions, "requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// reservationTx implements persistence.ReservationTx on a live
// transaction.
type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	return getReservation(ctx, t.tx, id)
}

func (t *reservationTx) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]persistence.Reservation, error) {
	return listForRoomAndDate(ctx, t.tx, roomID, date, statuses)
}

func (t *reservationTx) CreateReservation(ctx context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	if reservation.ID == "" {
		return persistence.Reservation{}, persistence.ErrConstraintViolation
	}

	foodNames, err := encodeNames(reservation.FoodNames)
	if err != nil {
		return persistence.Reservation{}, err
	}
	snackNames, err := encodeNames(reservation.SnackNames)
	if err != nil {
		return persistence.Reservation{}, err
	}

	query := `
		INSERT INTO reservations (
			id, room_id, requester_id, reservation_date, session,
			letter_number, agenda, description, meeting_type, note,
			document_url, food_names, snack_names, status,
			rejection_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = t.tx.ExecContext(ctx, query,
		reservation.ID,
		reservation.RoomID,
		reservation.RequesterID,
		reservation.Date.UTC().Format(time.RFC3339),
		reservation.Partition,
		reservation.LetterNumber,
		reservation.Agenda,
		reservation.Description,
		reservation.MeetingType,
		nullString(reservation.Note),
		nullString(reservation.DocumentURL),
		foodNames,
		snackNames,
		reservation.Status,
		nullString(reservation.RejectionReason),
		reservation.CreatedAt.UTC().Format(time.RFC3339),
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	return getReservation(ctx, t.tx, reservation.ID)
}

func (t *reservationTx) UpdateReservationStatus(ctx context.Context, id, status string, rejectionReason *string, updatedAt time.Time) (persistence.Reservation, error) {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ?`,
		status,
		nullString(rejectionReason),
		updatedAt.UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	if err := requireAffected(result); err != nil {
		return persistence.Reservation{}, err
	}

	return getReservation(ctx, t.tx, id)
}

const reservationColumns = `
	id, room_id, requester_id, reservation_date, session, letter_number,
	agenda, description, meeting_type, note, document_url, food_names,
	snack_names, status, rejection_reason, created_at, updated_at`

func getReservation(ctx context.Context, q queryer, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	row := q.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)

	reservation, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return reservation, nil
}

func listForRoomAndDate(ctx context.Context, q queryer, roomID string, date time.Time, statuses []string) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND reservation_date = ?`
	args := []any{roomID, date.UTC().Format(time.RFC3339)}

	if len(statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY created_at, id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		reservation                    persistence.Reservation
		dateStr, createdStr, updatedStr string
		note, documentURL, reason      sql.NullString
		foodNames, snackNames          string
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.RoomID,
		&reservation.RequesterID,
		&dateStr,
		&reservation.Partition,
		&reservation.LetterNumber,
		&reservation.Agenda,
		&reservation.Description,
		&reservation.MeetingType,
		&note,
		&documentURL,
		&foodNames,
		&snackNames,
		&reservation.Status,
		&reason,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	if reservation.Date, err = time.Parse(time.RFC3339, dateStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse reservation_date: %w", err)
	}
	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if reservation.FoodNames, err = decodeNames(foodNames); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse food_names: %w", err)
	}
	if reservation.SnackNames, err = decodeNames(snackNames); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse snack_names: %w", err)
	}

	reservation.Note = stringPtr(note)
	reservation.DocumentURL = stringPtr(documentURL)
	reservation.RejectionReason = stringPtr(reason)

	return reservation, nil
}

func scanReservations(rows *sql.Rows) ([]persistence.Reservation, error) {
	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, mapError(err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode name snapshot: %w", err)
	}
	return string(encoded), nil
}

func decodeNames(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(encoded), &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, nil
}
