package application

import (
	"time"

	"github.com/example/room-reservation/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// User represents a staff account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room represents a meeting room catalog entry.
type Room struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name        string
	Description string
	Capacity    int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update an existing room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// DeleteRoomParams wraps the data required to delete a room.
type DeleteRoomParams struct {
	Principal Principal
	RoomID    string
}

// CateringItem is a food or snack catalog entry.
type CateringItem struct {
	ID        string
	Kind      string
	Name      string
	CreatedAt time.Time
}

// Catering item kinds.
const (
	CateringKindFood  = "FOOD"
	CateringKindSnack = "SNACK"
)

// CateringItemInput captures caller provided catalog fields.
type CateringItemInput struct {
	Kind string
	Name string
}

// CreateCateringItemParams wraps the data required to add a catalog item.
type CreateCateringItemParams struct {
	Principal Principal
	Input     CateringItemInput
}

// DeleteCateringItemParams wraps the data required to remove a catalog item.
type DeleteCateringItemParams struct {
	Principal Principal
	ItemID    string
}

// ListCateringItemsParams wraps the data required to list the catalog.
type ListCateringItemsParams struct {
	Principal Principal
	Kind      string
}

// Reservation statuses.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Meeting types accepted on a reservation.
const (
	MeetingTypeInternal      = "INTERNAL"
	MeetingTypeCrossInternal = "INTERNAL_LINTAS_BIDANG"
	MeetingTypeExternal      = "EKSTERNAL"
)

// Reservation represents a room booking for one partition of one
// calendar day.
type Reservation struct {
	ID              string
	RoomID          string
	RequesterID     string
	Date            time.Time
	Partition       booking.Partition
	LetterNumber    string
	Agenda          string
	Description     string
	MeetingType     string
	Note            *string
	DocumentURL     *string
	FoodNames       []string
	SnackNames      []string
	Status          string
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReservationInput captures caller provided reservation fields. The
// catering IDs reference catalog entries; their names are snapshotted
// onto the reservation at admission time.
type ReservationInput struct {
	RoomID       string
	Date         time.Time
	Partition    booking.Partition
	LetterNumber string
	Agenda       string
	Description  string
	MeetingType  string
	Note         string
	DocumentURL  string
	FoodIDs      []string
	SnackIDs     []string
}

// CreateReservationParams wraps the data required to submit a reservation.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// CreateReservationResult reports the admitted reservation and, when
// the auto-approve gate is enabled, the displaced competitors.
type CreateReservationResult struct {
	Reservation  Reservation
	AutoApproved bool
	Displaced    []Reservation
}

// ApproveReservationParams wraps the data required to approve a
// pending reservation.
type ApproveReservationParams struct {
	Principal     Principal
	ReservationID string
}

// ApproveReservationResult reports the approved reservation and the
// competitors displaced by the approval.
type ApproveReservationResult struct {
	Reservation Reservation
	Displaced   []Reservation
}

// RejectReservationParams wraps the data required to reject a pending
// reservation.
type RejectReservationParams struct {
	Principal     Principal
	ReservationID string
	Reason        string
}

// GetReservationParams wraps the data required to fetch one reservation.
type GetReservationParams struct {
	Principal     Principal
	ReservationID string
}

// ListReservationsParams wraps the data required to list reservations.
// Non-admin principals only ever see their own.
type ListReservationsParams struct {
	Principal   Principal
	RequesterID string
	Status      string
	Page        int
	PageSize    int
}

// AvailabilityParams wraps the data required to compute a day's
// availability board. A non-empty RoomID narrows the board to one room.
type AvailabilityParams struct {
	Principal Principal
	Date      time.Time
	RoomID    string
}

// PartitionAvailability is one partition's classification on the board.
type PartitionAvailability struct {
	Partition booking.Partition
	Status    booking.Status
}

// RoomAvailability is one room's row on the availability board.
type RoomAvailability struct {
	Room       Room
	Partitions []PartitionAvailability
}

// SystemConfig is the singleton of process-wide settings.
type SystemConfig struct {
	AutoApprove bool
	UpdatedAt   time.Time
}

// SetAutoApproveParams wraps the data required to flip the
// auto-approve gate.
type SetAutoApproveParams struct {
	Principal Principal
	Enabled   bool
}

// UserInput captures caller provided account fields.
type UserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
	Password    string
}

// CreateUserParams wraps the data required to create an account.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// ChangePasswordParams wraps the data required to change the caller's
// own password.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
}

// Session represents an authentication session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams wraps the data required to sign in.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult reports the signed-in user and the issued session.
type AuthenticateResult struct {
	User    User
	Session Session
}

// ValidateSessionResult reports the principal a valid token belongs to.
type ValidateSessionResult struct {
	User    User
	Session Session
}
