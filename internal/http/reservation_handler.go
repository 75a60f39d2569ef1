package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
)

type reservationService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.CreateReservationResult, error)
	Approve(ctx context.Context, params application.ApproveReservationParams) (application.ApproveReservationResult, error)
	Reject(ctx context.Context, params application.RejectReservationParams) (application.Reservation, error)
	GetReservation(ctx context.Context, params application.GetReservationParams) (application.Reservation, error)
	ListReservations(ctx context.Context, params application.ListReservationsParams) ([]application.Reservation, error)
	ComputeAvailability(ctx context.Context, params application.AvailabilityParams) ([]application.RoomAvailability, error)
}

// ReservationHandler serves reservation submission, adjudication, and
// the availability board.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler constructs a reservation handler.
func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// Create admits a new reservation request.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
	)

	result, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"reservation_id", result.Reservation.ID,
		"auto_approved", result.AutoApproved,
	).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createReservationResponse{
		Reservation:  toReservationDTO(result.Reservation),
		AutoApproved: result.AutoApproved,
		Displaced:    toReservationDTOs(result.Displaced),
	})
}

// Approve adjudicates a pending reservation in its favor.
func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Approve",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)

	result, err := h.service.Approve(r.Context(), application.ApproveReservationParams{
		Principal:     principal,
		ReservationID: reservationID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation approval failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("displaced", len(result.Displaced)).InfoContext(r.Context(), "reservation approved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, approveReservationResponse{
		Reservation: toReservationDTO(result.Reservation),
		Displaced:   toReservationDTOs(result.Displaced),
	})
}

type rejectReservationRequest struct {
	Reason string `json:"reason"`
}

// Reject adjudicates a pending reservation against it.
func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req rejectReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reject", "principal_id", principal.UserID, "reservation_id", reservationID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rejection request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reject",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)

	reservation, err := h.service.Reject(r.Context(), application.RejectReservationParams{
		Principal:     principal,
		ReservationID: reservationID,
		Reason:        req.Reason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation rejection failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation rejected")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

// Get returns one reservation.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	reservation, err := h.service.GetReservation(r.Context(), application.GetReservationParams{
		Principal:     principal,
		ReservationID: reservationID,
	})
	if err != nil {
		h.log(r.Context(), "Get", "reservation_id", reservationID).ErrorContext(r.Context(), "reservation lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

// List returns reservations visible to the principal.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	params := application.ListReservationsParams{
		Principal:   principal,
		RequesterID: query.Get("requester_id"),
		Status:      query.Get("status"),
	}
	if page := query.Get("page"); page != "" {
		params.Page, _ = strconv.Atoi(page)
	}
	if size := query.Get("page_size"); size != "" {
		params.PageSize, _ = strconv.Atoi(size)
	}

	reservations, err := h.service.ListReservations(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "reservation listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

// Availability returns the partition board for every room on a date.
func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	board, err := h.service.ComputeAvailability(r.Context(), application.AvailabilityParams{
		Principal: principal,
		Date:      date,
		RoomID:    r.URL.Query().Get("room_id"),
	})
	if err != nil {
		h.log(r.Context(), "Availability", "date", date.Format("2006-01-02")).ErrorContext(r.Context(), "availability computation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Date:  date.Format("2006-01-02"),
		Rooms: toAvailabilityDTOs(board),
	})
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errInvalidDate
	}
	date, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return date, nil
}

type reservationRequest struct {
	RoomID       string   `json:"room_id"`
	Date         string   `json:"date"`
	Session      string   `json:"session"`
	LetterNumber string   `json:"letter_number"`
	Agenda       string   `json:"agenda"`
	Description  string   `json:"description"`
	MeetingType  string   `json:"meeting_type"`
	Note         string   `json:"note"`
	DocumentURL  string   `json:"document_url"`
	FoodIDs      []string `json:"food_ids"`
	SnackIDs     []string `json:"snack_ids"`
}

func (r reservationRequest) toInput() (application.ReservationInput, error) {
	date, err := parseDateParam(r.Date)
	if err != nil {
		return application.ReservationInput{}, err
	}
	return application.ReservationInput{
		RoomID:       r.RoomID,
		Date:         date,
		Partition:    booking.Partition(r.Session),
		LetterNumber: r.LetterNumber,
		Agenda:       r.Agenda,
		Description:  r.Description,
		MeetingType:  r.MeetingType,
		Note:         r.Note,
		DocumentURL:  r.DocumentURL,
		FoodIDs:      r.FoodIDs,
		SnackIDs:     r.SnackIDs,
	}, nil
}

type reservationDTO struct {
	ID              string   `json:"id"`
	RoomID          string   `json:"room_id"`
	RequesterID     string   `json:"requester_id"`
	Date            string   `json:"date"`
	Session         string   `json:"session"`
	LetterNumber    string   `json:"letter_number"`
	Agenda          string   `json:"agenda"`
	Description     string   `json:"description,omitempty"`
	MeetingType     string   `json:"meeting_type"`
	Note            *string  `json:"note,omitempty"`
	DocumentURL     *string  `json:"document_url,omitempty"`
	FoodNames       []string `json:"food_names,omitempty"`
	SnackNames      []string `json:"snack_names,omitempty"`
	Status          string   `json:"status"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type createReservationResponse struct {
	Reservation  reservationDTO   `json:"reservation"`
	AutoApproved bool             `json:"auto_approved"`
	Displaced    []reservationDTO `json:"displaced,omitempty"`
}

type approveReservationResponse struct {
	Reservation reservationDTO   `json:"reservation"`
	Displaced   []reservationDTO `json:"displaced,omitempty"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

func toReservationDTO(r application.Reservation) reservationDTO {
	return reservationDTO{
		ID:              r.ID,
		RoomID:          r.RoomID,
		RequesterID:     r.RequesterID,
		Date:            r.Date.UTC().Format("2006-01-02"),
		Session:         string(r.Partition),
		LetterNumber:    r.LetterNumber,
		Agenda:          r.Agenda,
		Description:     r.Description,
		MeetingType:     r.MeetingType,
		Note:            r.Note,
		DocumentURL:     r.DocumentURL,
		FoodNames:       r.FoodNames,
		SnackNames:      r.SnackNames,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationDTO(r))
	}
	return out
}

type partitionStatusDTO struct {
	Session string `json:"session"`
	Status  string `json:"status"`
}

type roomAvailabilityDTO struct {
	Room     roomDTO              `json:"room"`
	Sessions []partitionStatusDTO `json:"sessions"`
}

type availabilityResponse struct {
	Date  string                `json:"date"`
	Rooms []roomAvailabilityDTO `json:"rooms"`
}

func toAvailabilityDTOs(board []application.RoomAvailability) []roomAvailabilityDTO {
	out := make([]roomAvailabilityDTO, 0, len(board))
	for _, row := range board {
		dto := roomAvailabilityDTO{Room: toRoomDTO(row.Room)}
		for _, p := range row.Partitions {
			dto.Sessions = append(dto.Sessions, partitionStatusDTO{
				Session: string(p.Partition),
				Status:  string(p.Status),
			})
		}
		out = append(out, dto)
	}
	return out
}
