package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
}

// RoomRepository exposes CRUD operations for rooms. DeleteRoom fails
// with ErrConflict while the room still has pending or approved
// reservations.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// CateringRepository stores the food and snack catalog.
type CateringRepository interface {
	CreateCateringItem(ctx context.Context, item CateringItem) error
	DeleteCateringItem(ctx context.Context, id string) error
	GetCateringItem(ctx context.Context, id string) (CateringItem, error)
	ListCateringItems(ctx context.Context, kind string) ([]CateringItem, error)
	ListCateringItemsByIDs(ctx context.Context, ids []string) ([]CateringItem, error)
}

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	RequesterID string
	Status      string
	Page        int
	PageSize    int
}

// ReservationTx is the transaction-scoped view of reservation storage.
// Admission and approval both run their reads and writes through one
// ReservationTx so their conflict checks and state changes commit or
// roll back as a unit.
type ReservationTx interface {
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error)
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string, rejectionReason *string, updatedAt time.Time) (Reservation, error)
}

// ReservationRepository stores reservations. InTransaction is the
// unit-of-work boundary: fn runs against a single storage transaction
// and any error rolls every change back.
type ReservationRepository interface {
	InTransaction(ctx context.Context, fn func(tx ReservationTx) error) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
}

// ConfigRepository stores the singleton system configuration row.
type ConfigRepository interface {
	GetSystemConfig(ctx context.Context) (SystemConfig, error)
	SetAutoApprove(ctx context.Context, enabled bool, updatedAt time.Time) (SystemConfig, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
