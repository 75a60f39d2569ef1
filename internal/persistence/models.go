package persistence

import "time"

// User represents a staff account. Non-admin users are the "PIC"
// requesters who submit reservations.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	IsAdmin      bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
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

// CateringItem is a food or snack catalog entry offered with a
// reservation.
type CateringItem struct {
	ID        string
	Kind      string
	Name      string
	CreatedAt time.Time
}

// Reservation is a room booking for one partition of one calendar day.
// The date is stored at UTC midnight. Apart from status and rejection
// reason the record is immutable once created; the catering names are
// snapshots taken at admission time.
type Reservation struct {
	ID              string
	RoomID          string
	RequesterID     string
	Date            time.Time
	Partition       string
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

// SystemConfig is the singleton row of process-wide settings.
type SystemConfig struct {
	AutoApprove bool
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
