package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/booking"
)

// DisplacedReason is the rejection reason written onto pending
// reservations displaced by an approval of an overlapping partition.
const DisplacedReason = "Maaf, sudah ada booking lebih dulu"

// ReservationTx is the transaction-scoped view of reservation storage.
// Admission and approval run their conflict checks and writes through
// one ReservationTx so they commit or roll back as a unit.
type ReservationTx interface {
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error)
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string, rejectionReason *string, updatedAt time.Time) (Reservation, error)
}

// ReservationListFilter narrows reservation listings.
type ReservationListFilter struct {
	RequesterID string
	Status      string
	Page        int
	PageSize    int
}

// ReservationRepository captures the persistence operations needed by
// the service.
type ReservationRepository interface {
	InTransaction(ctx context.Context, fn func(tx ReservationTx) error) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error)
	ListReservations(ctx context.Context, filter ReservationListFilter) ([]Reservation, error)
}

// ReservationService orchestrates admission, approval, and availability
// for room reservations.
type ReservationService struct {
	reservations ReservationRepository
	rooms        RoomRepository
	catering     CateringRepository
	config       ConfigRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService constructs a reservation service with the provided dependencies.
func NewReservationService(reservations ReservationRepository, rooms RoomRepository, catering CateringRepository, config ConfigRepository, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, catering, config, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, rooms RoomRepository, catering CateringRepository, config ConfigRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		catering:     catering,
		config:       config,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// CreateReservation validates and admits a reservation request. The
// conflict checks and the insert run in one storage transaction; when
// the auto-approve gate is enabled the approval cascade runs in the
// same transaction.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (result CreateReservationResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
		"partition", string(params.Input.Partition),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"reservation_id", result.Reservation.ID,
			"auto_approved", result.AutoApproved,
			"displaced", len(result.Displaced),
		).InfoContext(ctx, "reservation created")
	}()

	// Administrators adjudicate requests; only requesters submit them.
	if params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateReservationInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.rooms != nil {
		if _, err = s.rooms.GetRoom(ctx, params.Input.RoomID); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var foodNames, snackNames []string
	foodNames, snackNames, err = s.snapshotCatering(ctx, params.Input.FoodIDs, params.Input.SnackIDs)
	if err != nil {
		return
	}

	autoApprove := false
	if s.config != nil {
		var config SystemConfig
		config, err = s.config.GetSystemConfig(ctx)
		if err != nil {
			return
		}
		autoApprove = config.AutoApprove
	}

	now := s.now()
	date := booking.DateOnly(params.Input.Date)

	reservation := Reservation{
		ID:           s.idGenerator(),
		RoomID:       params.Input.RoomID,
		RequesterID:  params.Principal.UserID,
		Date:         date,
		Partition:    params.Input.Partition,
		LetterNumber: strings.TrimSpace(params.Input.LetterNumber),
		Agenda:       strings.TrimSpace(params.Input.Agenda),
		Description:  strings.TrimSpace(params.Input.Description),
		MeetingType:  params.Input.MeetingType,
		Note:         normalizeOptionalString(params.Input.Note),
		DocumentURL:  normalizeOptionalString(params.Input.DocumentURL),
		FoodNames:    foodNames,
		SnackNames:   snackNames,
		Status:       StatusPending,
		CreatedAt:    now,
	}
	reservation.UpdatedAt = now

	err = s.reservations.InTransaction(ctx, func(tx ReservationTx) error {
		existing, txErr := tx.ListForRoomAndDate(ctx, reservation.RoomID, date, []string{StatusPending, StatusApproved})
		if txErr != nil {
			return txErr
		}

		held := make([]booking.ExistingReservation, 0, len(existing))
		for _, e := range existing {
			held = append(held, booking.ExistingReservation{
				RequesterID: e.RequesterID,
				Partition:   e.Partition,
				Approved:    e.Status == StatusApproved,
			})
		}

		request := booking.AdmissionRequest{
			RequesterID: reservation.RequesterID,
			Partition:   reservation.Partition,
			Date:        date,
		}
		if reason := booking.CheckAdmission(request, held, now); reason != "" {
			return declined(reason)
		}

		persisted, txErr := tx.CreateReservation(ctx, reservation)
		if txErr != nil {
			return txErr
		}
		result.Reservation = persisted

		if !autoApprove {
			return nil
		}

		approved, displaced, txErr := s.approveLocked(ctx, tx, persisted, now)
		if txErr != nil {
			return txErr
		}
		result.Reservation = approved
		result.AutoApproved = true
		result.Displaced = displaced
		return nil
	})
	if err != nil {
		result = CreateReservationResult{}
		err = mapRepoError(err)
		return
	}

	return
}

// Approve transitions a pending reservation to APPROVED and displaces
// every pending reservation holding an overlapping partition of the
// same room and date.
func (s *ReservationService) Approve(ctx context.Context, params ApproveReservationParams) (result ApproveReservationResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Approve",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to approve reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("displaced", len(result.Displaced)).InfoContext(ctx, "reservation approved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	now := s.now()
	err = s.reservations.InTransaction(ctx, func(tx ReservationTx) error {
		reservation, txErr := tx.GetReservation(ctx, params.ReservationID)
		if txErr != nil {
			return txErr
		}
		if reservation.Status != StatusPending {
			return declined(booking.ReasonAlreadyProcessed)
		}

		approvedOthers, txErr := tx.ListForRoomAndDate(ctx, reservation.RoomID, reservation.Date, []string{StatusApproved})
		if txErr != nil {
			return txErr
		}
		for _, other := range approvedOthers {
			if other.Partition == reservation.Partition {
				return declined(booking.ReasonSessionAlreadyApproved)
			}
		}

		approved, displaced, txErr := s.approveLocked(ctx, tx, reservation, now)
		if txErr != nil {
			return txErr
		}
		result = ApproveReservationResult{Reservation: approved, Displaced: displaced}
		return nil
	})
	if err != nil {
		result = ApproveReservationResult{}
		err = mapRepoError(err)
		return
	}

	return
}

// approveLocked marks the reservation APPROVED and rejects every other
// pending or approved reservation whose partition overlaps it. A
// displaced approval can only exist when the overlap invariant was
// already violated; the transition stays correct either way. It must
// run inside the transaction that validated the reservation.
func (s *ReservationService) approveLocked(ctx context.Context, tx ReservationTx, reservation Reservation, now time.Time) (Reservation, []Reservation, error) {
	approved, err := tx.UpdateReservationStatus(ctx, reservation.ID, StatusApproved, nil, now)
	if err != nil {
		return Reservation{}, nil, err
	}

	competitors, err := tx.ListForRoomAndDate(ctx, reservation.RoomID, reservation.Date, []string{StatusPending, StatusApproved})
	if err != nil {
		return Reservation{}, nil, err
	}

	var displaced []Reservation
	reason := DisplacedReason
	for _, competitor := range competitors {
		if competitor.ID == reservation.ID {
			continue
		}
		if !booking.Overlaps(competitor.Partition, approved.Partition) {
			continue
		}
		rejected, err := tx.UpdateReservationStatus(ctx, competitor.ID, StatusRejected, &reason, now)
		if err != nil {
			return Reservation{}, nil, err
		}
		displaced = append(displaced, rejected)
	}

	return approved, displaced, nil
}

// Reject transitions a pending reservation to REJECTED with the given
// reason. An empty reason leaves the reservation untouched.
func (s *ReservationService) Reject(ctx context.Context, params RejectReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Reject",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reject reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation rejected")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		err = declined(booking.ReasonEmptyReason)
		return
	}

	now := s.now()
	err = s.reservations.InTransaction(ctx, func(tx ReservationTx) error {
		existing, txErr := tx.GetReservation(ctx, params.ReservationID)
		if txErr != nil {
			return txErr
		}
		if existing.Status != StatusPending {
			return declined(booking.ReasonAlreadyProcessed)
		}

		updated, txErr := tx.UpdateReservationStatus(ctx, params.ReservationID, StatusRejected, &reason, now)
		if txErr != nil {
			return txErr
		}
		reservation = updated
		return nil
	})
	if err != nil {
		reservation = Reservation{}
		err = mapRepoError(err)
		return
	}

	return
}

// GetReservation returns one reservation. Requesters may only read
// their own.
func (s *ReservationService) GetReservation(ctx context.Context, params GetReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	reservation, err = s.reservations.GetReservation(ctx, params.ReservationID)
	if err != nil {
		reservation = Reservation{}
		err = mapRepoError(err)
		return
	}

	if !params.Principal.IsAdmin && reservation.RequesterID != params.Principal.UserID {
		reservation = Reservation{}
		err = ErrUnauthorized
		return
	}

	return
}

// ListReservations returns reservations matching the filter, newest
// first. Non-admin principals only ever see their own.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	filter := ReservationListFilter{
		RequesterID: params.RequesterID,
		Status:      params.Status,
		Page:        params.Page,
		PageSize:    params.PageSize,
	}
	if !params.Principal.IsAdmin {
		filter.RequesterID = params.Principal.UserID
	}

	reservations, err = s.reservations.ListReservations(ctx, filter)
	if err != nil {
		reservations = nil
		err = mapRepoError(err)
		return
	}

	return
}

// ComputeAvailability classifies every partition of every room for the
// given date.
func (s *ReservationService) ComputeAvailability(ctx context.Context, params AvailabilityParams) (board []RoomAvailability, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil || s.rooms == nil {
		err = fmt.Errorf("reservation or room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ComputeAvailability",
		"date", params.Date.Format("2006-01-02"),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute availability", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var rooms []Room
	if params.RoomID != "" {
		room, getErr := s.rooms.GetRoom(ctx, params.RoomID)
		if getErr != nil {
			err = mapRepoError(getErr)
			return
		}
		rooms = []Room{room}
	} else {
		rooms, err = s.rooms.ListRooms(ctx)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	now := s.now()
	date := booking.DateOnly(params.Date)

	board = make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		approved, listErr := s.reservations.ListForRoomAndDate(ctx, room.ID, date, []string{StatusApproved})
		if listErr != nil {
			board = nil
			err = mapRepoError(listErr)
			return
		}

		partitions := make([]booking.Partition, 0, len(approved))
		for _, r := range approved {
			partitions = append(partitions, r.Partition)
		}

		statuses := booking.PartitionStatuses(partitions, date, now)
		row := RoomAvailability{Room: room, Partitions: make([]PartitionAvailability, 0, 3)}
		for _, p := range booking.Partitions() {
			row.Partitions = append(row.Partitions, PartitionAvailability{Partition: p, Status: statuses[p]})
		}
		board = append(board, row)
	}

	return
}

// snapshotCatering resolves catalog IDs to the denormalized name lists
// stored on the reservation.
func (s *ReservationService) snapshotCatering(ctx context.Context, foodIDs, snackIDs []string) ([]string, []string, error) {
	if s.catering == nil || (len(foodIDs) == 0 && len(snackIDs) == 0) {
		return nil, nil, nil
	}

	ids := make([]string, 0, len(foodIDs)+len(snackIDs))
	ids = append(ids, foodIDs...)
	ids = append(ids, snackIDs...)

	items, err := s.catering.ListCateringItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}

	byID := make(map[string]CateringItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	vErr := &ValidationError{}
	foodNames := resolveCateringNames(foodIDs, CateringKindFood, byID, "food_ids", vErr)
	snackNames := resolveCateringNames(snackIDs, CateringKindSnack, byID, "snack_ids", vErr)
	if vErr.HasErrors() {
		return nil, nil, vErr
	}
	return foodNames, snackNames, nil
}

func resolveCateringNames(ids []string, kind string, byID map[string]CateringItem, field string, vErr *ValidationError) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || item.Kind != kind {
			vErr.add(field, "unknown catering item: "+id)
			continue
		}
		names = append(names, item.Name)
	}
	return names
}

func validateReservationInput(input ReservationInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !input.Partition.Valid() {
		vErr.add("session", "session must be MORNING, AFTERNOON, or FULL_DAY")
	}
	if strings.TrimSpace(input.LetterNumber) == "" {
		vErr.add("letter_number", "letter number is required")
	}
	if strings.TrimSpace(input.Agenda) == "" {
		vErr.add("agenda", "agenda is required")
	}
	switch input.MeetingType {
	case MeetingTypeInternal, MeetingTypeCrossInternal, MeetingTypeExternal:
	default:
		vErr.add("meeting_type", "unknown meeting type")
	}

	return vErr
}

func normalizeOptionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
