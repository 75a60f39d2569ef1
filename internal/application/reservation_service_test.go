package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/testfixtures"
)

// fakeReservationRepo keeps reservations in memory and gives
// InTransaction snapshot semantics: fn runs against a copy that only
// replaces the store when fn succeeds.
type fakeReservationRepo struct {
	store map[string]Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{store: make(map[string]Reservation)}
}

func (f *fakeReservationRepo) clone() map[string]Reservation {
	out := make(map[string]Reservation, len(f.store))
	for id, r := range f.store {
		out[id] = r
	}
	return out
}

func (f *fakeReservationRepo) InTransaction(ctx context.Context, fn func(tx ReservationTx) error) error {
	snapshot := f.clone()
	if err := fn(&fakeReservationTx{store: snapshot}); err != nil {
		return err
	}
	f.store = snapshot
	return nil
}

func (f *fakeReservationRepo) GetReservation(ctx context.Context, id string) (Reservation, error) {
	return (&fakeReservationTx{store: f.store}).GetReservation(ctx, id)
}

func (f *fakeReservationRepo) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error) {
	return (&fakeReservationTx{store: f.store}).ListForRoomAndDate(ctx, roomID, date, statuses)
}

func (f *fakeReservationRepo) ListReservations(ctx context.Context, filter ReservationListFilter) ([]Reservation, error) {
	var out []Reservation
	for _, r := range f.store {
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeReservationTx struct {
	store map[string]Reservation
}

func (t *fakeReservationTx) GetReservation(ctx context.Context, id string) (Reservation, error) {
	r, ok := t.store[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	return r, nil
}

func (t *fakeReservationTx) ListForRoomAndDate(ctx context.Context, roomID string, date time.Time, statuses []string) ([]Reservation, error) {
	var out []Reservation
	for _, r := range t.store {
		if r.RoomID != roomID || !r.Date.Equal(date) {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if r.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeReservationTx) CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if _, exists := t.store[reservation.ID]; exists {
		return Reservation{}, ErrAlreadyExists
	}
	t.store[reservation.ID] = reservation
	return reservation, nil
}

func (t *fakeReservationTx) UpdateReservationStatus(ctx context.Context, id, status string, rejectionReason *string, updatedAt time.Time) (Reservation, error) {
	r, ok := t.store[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	r.Status = status
	r.RejectionReason = rejectionReason
	r.UpdatedAt = updatedAt
	t.store[id] = r
	return r, nil
}

type roomRepoStub struct {
	rooms map[string]Room
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) error {
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoStub) UpdateRoom(ctx context.Context, room Room) error {
	if _, ok := r.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	out := make([]Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *roomRepoStub) DeleteRoom(ctx context.Context, id string) error {
	if _, ok := r.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.rooms, id)
	return nil
}

type cateringRepoStub struct {
	items []CateringItem
}

func (c *cateringRepoStub) CreateCateringItem(ctx context.Context, item CateringItem) error {
	c.items = append(c.items, item)
	return nil
}

func (c *cateringRepoStub) DeleteCateringItem(ctx context.Context, id string) error {
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (c *cateringRepoStub) GetCateringItem(ctx context.Context, id string) (CateringItem, error) {
	for _, item := range c.items {
		if item.ID == id {
			return item, nil
		}
	}
	return CateringItem{}, ErrNotFound
}

func (c *cateringRepoStub) ListCateringItems(ctx context.Context, kind string) ([]CateringItem, error) {
	var out []CateringItem
	for _, item := range c.items {
		if kind == "" || item.Kind == kind {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *cateringRepoStub) ListCateringItemsByIDs(ctx context.Context, ids []string) ([]CateringItem, error) {
	var out []CateringItem
	for _, id := range ids {
		for _, item := range c.items {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

type configRepoStub struct {
	autoApprove bool
	updatedAt   time.Time
}

func (c *configRepoStub) GetSystemConfig(ctx context.Context) (SystemConfig, error) {
	return SystemConfig{AutoApprove: c.autoApprove, UpdatedAt: c.updatedAt}, nil
}

func (c *configRepoStub) SetAutoApprove(ctx context.Context, enabled bool, updatedAt time.Time) (SystemConfig, error) {
	c.autoApprove = enabled
	c.updatedAt = updatedAt
	return SystemConfig{AutoApprove: enabled, UpdatedAt: updatedAt}, nil
}

type reservationFixture struct {
	repo    *fakeReservationRepo
	rooms   *roomRepoStub
	config  *configRepoStub
	service *ReservationService
}

// fixedNow is 10:00 in the operating timezone on 2025-06-01.
var fixedNow = testfixtures.ReferenceTime()

var bookingDate = testfixtures.ReferenceDate()

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()

	repo := newFakeReservationRepo()
	rooms := &roomRepoStub{rooms: map[string]Room{
		"room-1": {ID: "room-1", Name: "Ruang Rapat A", Capacity: 12},
	}}
	catering := &cateringRepoStub{items: []CateringItem{
		{ID: "food-1", Kind: CateringKindFood, Name: "Nasi Kotak"},
		{ID: "snack-1", Kind: CateringKindSnack, Name: "Kue Lapis"},
	}}
	config := &configRepoStub{}

	idGen := testfixtures.NewIDGenerator("id").NextFunc()

	service := NewReservationService(repo, rooms, catering, config, idGen, func() time.Time { return fixedNow })
	return &reservationFixture{repo: repo, rooms: rooms, config: config, service: service}
}

func (f *reservationFixture) create(t *testing.T, requesterID string, partition booking.Partition) Reservation {
	t.Helper()

	result, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
		Principal: Principal{UserID: requesterID},
		Input: ReservationInput{
			RoomID:       "room-1",
			Date:         bookingDate,
			Partition:    partition,
			LetterNumber: "LN-001",
			Agenda:       "Rapat koordinasi",
			MeetingType:  MeetingTypeInternal,
		},
	})
	if err != nil {
		t.Fatalf("create reservation for %s/%s: %v", requesterID, partition, err)
	}
	return result.Reservation
}

func decisionReason(t *testing.T, err error) booking.Reason {
	t.Helper()

	var dErr *DecisionError
	if !errors.As(err, &dErr) {
		t.Fatalf("expected DecisionError, got %v", err)
	}
	return dErr.Reason
}

func TestReservationService_CreateReservation(t *testing.T) {
	t.Run("admits a pending reservation", func(t *testing.T) {
		f := newReservationFixture(t)

		result, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-1"},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate.Add(5 * time.Hour),
				Partition:    booking.PartitionMorning,
				LetterNumber: " LN-001 ",
				Agenda:       "Rapat koordinasi",
				MeetingType:  MeetingTypeInternal,
				FoodIDs:      []string{"food-1"},
				SnackIDs:     []string{"snack-1"},
			},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		r := result.Reservation
		if r.Status != StatusPending {
			t.Fatalf("status = %q, want PENDING", r.Status)
		}
		if !r.Date.Equal(bookingDate) {
			t.Fatalf("date = %v, want normalized %v", r.Date, bookingDate)
		}
		if r.LetterNumber != "LN-001" {
			t.Fatalf("letter number = %q, want trimmed", r.LetterNumber)
		}
		if len(r.FoodNames) != 1 || r.FoodNames[0] != "Nasi Kotak" {
			t.Fatalf("food names = %v", r.FoodNames)
		}
		if len(r.SnackNames) != 1 || r.SnackNames[0] != "Kue Lapis" {
			t.Fatalf("snack names = %v", r.SnackNames)
		}
		if result.AutoApproved {
			t.Fatal("auto approved with gate disabled")
		}
	})

	t.Run("rejects administrators as requesters", func(t *testing.T) {
		f := newReservationFixture(t)

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate,
				Partition:    booking.PartitionMorning,
				LetterNumber: "LN-001",
				Agenda:       "Rapat",
				MeetingType:  MeetingTypeInternal,
			},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		f := newReservationFixture(t)

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-1"},
			Input: ReservationInput{
				RoomID:      "room-1",
				Date:        bookingDate,
				Partition:   booking.Partition("EVENING"),
				MeetingType: "WORKSHOP",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"session", "letter_number", "agenda", "meeting_type"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("missing field error for %s", field)
			}
		}
	})

	t.Run("rejects unknown rooms", func(t *testing.T) {
		f := newReservationFixture(t)

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-1"},
			Input: ReservationInput{
				RoomID:       "room-missing",
				Date:         bookingDate,
				Partition:    booking.PartitionMorning,
				LetterNumber: "LN-001",
				Agenda:       "Rapat",
				MeetingType:  MeetingTypeInternal,
			},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown catering items", func(t *testing.T) {
		f := newReservationFixture(t)

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-1"},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate,
				Partition:    booking.PartitionMorning,
				LetterNumber: "LN-001",
				Agenda:       "Rapat",
				MeetingType:  MeetingTypeInternal,
				FoodIDs:      []string{"snack-1"},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["food_ids"]; !ok {
			t.Fatalf("missing field error for food_ids: %v", vErr.FieldErrors)
		}
	})

	t.Run("declines duplicate requests", func(t *testing.T) {
		f := newReservationFixture(t)
		f.create(t, "pic-1", booking.PartitionMorning)

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-1"},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate,
				Partition:    booking.PartitionMorning,
				LetterNumber: "LN-002",
				Agenda:       "Rapat lagi",
				MeetingType:  MeetingTypeInternal,
			},
		})
		if got := decisionReason(t, err); got != booking.ReasonDuplicateRequest {
			t.Fatalf("reason = %s, want DUPLICATE_REQUEST", got)
		}
	})

	t.Run("declines full day over an approved half day", func(t *testing.T) {
		f := newReservationFixture(t)
		morning := f.create(t, "pic-1", booking.PartitionMorning)

		if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: morning.ID,
		}); err != nil {
			t.Fatalf("approve: %v", err)
		}

		_, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-2"},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate,
				Partition:    booking.PartitionFullDay,
				LetterNumber: "LN-003",
				Agenda:       "Rapat besar",
				MeetingType:  MeetingTypeInternal,
			},
		})
		if got := decisionReason(t, err); got != booking.ReasonPartiallyBooked {
			t.Fatalf("reason = %s, want PARTIALLY_BOOKED", got)
		}
	})

	t.Run("pending overlap does not block admission", func(t *testing.T) {
		f := newReservationFixture(t)
		f.create(t, "pic-1", booking.PartitionMorning)

		second := f.create(t, "pic-2", booking.PartitionMorning)
		if second.Status != StatusPending {
			t.Fatalf("status = %q, want PENDING", second.Status)
		}
	})

	t.Run("auto approve admits and displaces in one step", func(t *testing.T) {
		f := newReservationFixture(t)
		competitor := f.create(t, "pic-1", booking.PartitionAfternoon)

		f.config.autoApprove = true
		result, err := f.service.CreateReservation(context.Background(), CreateReservationParams{
			Principal: Principal{UserID: "pic-2"},
			Input: ReservationInput{
				RoomID:       "room-1",
				Date:         bookingDate,
				Partition:    booking.PartitionFullDay,
				LetterNumber: "LN-004",
				Agenda:       "Rapat besar",
				MeetingType:  MeetingTypeInternal,
			},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if !result.AutoApproved {
			t.Fatal("expected auto approval")
		}
		if result.Reservation.Status != StatusApproved {
			t.Fatalf("status = %q, want APPROVED", result.Reservation.Status)
		}
		if len(result.Displaced) != 1 || result.Displaced[0].ID != competitor.ID {
			t.Fatalf("displaced = %+v, want competitor %s", result.Displaced, competitor.ID)
		}

		stored, err := f.repo.GetReservation(context.Background(), competitor.ID)
		if err != nil {
			t.Fatalf("get competitor: %v", err)
		}
		if stored.Status != StatusRejected {
			t.Fatalf("competitor status = %q, want REJECTED", stored.Status)
		}
		if stored.RejectionReason == nil || *stored.RejectionReason != DisplacedReason {
			t.Fatalf("competitor reason = %v, want displacement reason", stored.RejectionReason)
		}
	})
}

func TestReservationService_Approve(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		f := newReservationFixture(t)
		r := f.create(t, "pic-1", booking.PartitionMorning)

		_, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "pic-1"},
			ReservationID: r.ID,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("approves and displaces overlapping pending competitors", func(t *testing.T) {
		f := newReservationFixture(t)
		winner := f.create(t, "pic-1", booking.PartitionFullDay)
		morning := f.create(t, "pic-2", booking.PartitionMorning)
		afternoon := f.create(t, "pic-3", booking.PartitionAfternoon)

		result, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: winner.ID,
		})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}

		if result.Reservation.Status != StatusApproved {
			t.Fatalf("winner status = %q, want APPROVED", result.Reservation.Status)
		}
		if len(result.Displaced) != 2 {
			t.Fatalf("displaced %d competitors, want 2", len(result.Displaced))
		}
		for _, id := range []string{morning.ID, afternoon.ID} {
			stored, err := f.repo.GetReservation(context.Background(), id)
			if err != nil {
				t.Fatalf("get %s: %v", id, err)
			}
			if stored.Status != StatusRejected {
				t.Fatalf("%s status = %q, want REJECTED", id, stored.Status)
			}
			if stored.RejectionReason == nil || *stored.RejectionReason != DisplacedReason {
				t.Fatalf("%s reason = %v, want displacement reason", id, stored.RejectionReason)
			}
		}
	})

	t.Run("leaves non-overlapping pending requests untouched", func(t *testing.T) {
		f := newReservationFixture(t)
		winner := f.create(t, "pic-1", booking.PartitionMorning)
		other := f.create(t, "pic-2", booking.PartitionAfternoon)

		result, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: winner.ID,
		})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if len(result.Displaced) != 0 {
			t.Fatalf("displaced = %+v, want none", result.Displaced)
		}

		stored, err := f.repo.GetReservation(context.Background(), other.ID)
		if err != nil {
			t.Fatalf("get other: %v", err)
		}
		if stored.Status != StatusPending {
			t.Fatalf("other status = %q, want PENDING", stored.Status)
		}
	})

	t.Run("approving a half day displaces a pending full day", func(t *testing.T) {
		f := newReservationFixture(t)
		morning := f.create(t, "pic-1", booking.PartitionMorning)
		fullDay := f.create(t, "pic-2", booking.PartitionFullDay)

		if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: morning.ID,
		}); err != nil {
			t.Fatalf("approve morning: %v", err)
		}

		// Full day overlaps the approved morning, but it was displaced
		// by that approval; re-create a fresh pending overlap via a
		// direct competitor on the afternoon instead.
		stored, err := f.repo.GetReservation(context.Background(), fullDay.ID)
		if err != nil {
			t.Fatalf("get full day: %v", err)
		}
		if stored.Status != StatusRejected {
			t.Fatalf("full day status = %q, want REJECTED after displacement", stored.Status)
		}

		afternoon := f.create(t, "pic-3", booking.PartitionAfternoon)
		if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: afternoon.ID,
		}); err != nil {
			t.Fatalf("approve afternoon: %v", err)
		}

		// Both half days now approved; nothing pending overlaps, and a
		// second approval of either declines as already processed.
		_, err = f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: morning.ID,
		})
		if got := decisionReason(t, err); got != booking.ReasonAlreadyProcessed {
			t.Fatalf("reason = %s, want ALREADY_PROCESSED", got)
		}
	})

	t.Run("displaces an overlapping approved reservation", func(t *testing.T) {
		f := newReservationFixture(t)
		morning := f.create(t, "pic-1", booking.PartitionMorning)

		if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: morning.ID,
		}); err != nil {
			t.Fatalf("approve morning: %v", err)
		}

		// Inject a pending full-day request directly so it coexists
		// with the approved morning.
		if err := f.repo.InTransaction(context.Background(), func(tx ReservationTx) error {
			_, err := tx.CreateReservation(context.Background(), Reservation{
				ID:          "manual-1",
				RoomID:      "room-1",
				RequesterID: "pic-3",
				Date:        bookingDate,
				Partition:   booking.PartitionFullDay,
				Status:      StatusPending,
			})
			return err
		}); err != nil {
			t.Fatalf("inject pending: %v", err)
		}

		// The approved morning overlaps but is not the identical
		// partition, so the full day wins and the morning is pushed
		// out alongside any pending competitors.
		result, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: "manual-1",
		})
		if err != nil {
			t.Fatalf("approve full day: %v", err)
		}
		if result.Reservation.Status != StatusApproved {
			t.Fatalf("full day status = %q, want APPROVED", result.Reservation.Status)
		}
		if len(result.Displaced) != 1 || result.Displaced[0].ID != morning.ID {
			t.Fatalf("displaced = %+v, want the approved morning", result.Displaced)
		}

		stored, err := f.repo.GetReservation(context.Background(), morning.ID)
		if err != nil {
			t.Fatalf("get morning: %v", err)
		}
		if stored.Status != StatusRejected {
			t.Fatalf("morning status = %q, want REJECTED after displacement", stored.Status)
		}
		if stored.RejectionReason == nil || *stored.RejectionReason != DisplacedReason {
			t.Fatalf("morning reason = %v, want displacement reason", stored.RejectionReason)
		}
	})

	t.Run("declines when the identical partition is already approved", func(t *testing.T) {
		f := newReservationFixture(t)
		morning := f.create(t, "pic-1", booking.PartitionMorning)

		if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: morning.ID,
		}); err != nil {
			t.Fatalf("approve morning: %v", err)
		}

		// A second pending morning can only exist when admission and
		// approval raced; the approval-time re-check catches it.
		if err := f.repo.InTransaction(context.Background(), func(tx ReservationTx) error {
			_, err := tx.CreateReservation(context.Background(), Reservation{
				ID:          "manual-1",
				RoomID:      "room-1",
				RequesterID: "pic-3",
				Date:        bookingDate,
				Partition:   booking.PartitionMorning,
				Status:      StatusPending,
			})
			return err
		}); err != nil {
			t.Fatalf("inject pending: %v", err)
		}

		_, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: "manual-1",
		})
		if got := decisionReason(t, err); got != booking.ReasonSessionAlreadyApproved {
			t.Fatalf("reason = %s, want SESSION_ALREADY_APPROVED", got)
		}

		// The decline left both records untouched.
		stored, err := f.repo.GetReservation(context.Background(), "manual-1")
		if err != nil {
			t.Fatalf("get injected: %v", err)
		}
		if stored.Status != StatusPending {
			t.Fatalf("injected status = %q, want PENDING", stored.Status)
		}
		kept, err := f.repo.GetReservation(context.Background(), morning.ID)
		if err != nil {
			t.Fatalf("get morning: %v", err)
		}
		if kept.Status != StatusApproved {
			t.Fatalf("morning status = %q, want APPROVED", kept.Status)
		}
	})

	t.Run("declines unknown reservations", func(t *testing.T) {
		f := newReservationFixture(t)

		_, err := f.service.Approve(context.Background(), ApproveReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: "missing",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationService_Reject(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		f := newReservationFixture(t)
		r := f.create(t, "pic-1", booking.PartitionMorning)

		_, err := f.service.Reject(context.Background(), RejectReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: r.ID,
			Reason:        "   ",
		})
		if got := decisionReason(t, err); got != booking.ReasonEmptyReason {
			t.Fatalf("reason = %s, want EMPTY_REASON", got)
		}

		stored, err := f.repo.GetReservation(context.Background(), r.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if stored.Status != StatusPending {
			t.Fatalf("status = %q, want PENDING after declined rejection", stored.Status)
		}
	})

	t.Run("rejects a pending reservation", func(t *testing.T) {
		f := newReservationFixture(t)
		r := f.create(t, "pic-1", booking.PartitionMorning)

		rejected, err := f.service.Reject(context.Background(), RejectReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: r.ID,
			Reason:        "Ruangan dipakai maintenance",
		})
		if err != nil {
			t.Fatalf("reject: %v", err)
		}
		if rejected.Status != StatusRejected {
			t.Fatalf("status = %q, want REJECTED", rejected.Status)
		}
		if rejected.RejectionReason == nil || *rejected.RejectionReason != "Ruangan dipakai maintenance" {
			t.Fatalf("reason = %v", rejected.RejectionReason)
		}
	})

	t.Run("declines reprocessing", func(t *testing.T) {
		f := newReservationFixture(t)
		r := f.create(t, "pic-1", booking.PartitionMorning)

		if _, err := f.service.Reject(context.Background(), RejectReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: r.ID,
			Reason:        "declined",
		}); err != nil {
			t.Fatalf("first reject: %v", err)
		}

		_, err := f.service.Reject(context.Background(), RejectReservationParams{
			Principal:     Principal{UserID: "admin-1", IsAdmin: true},
			ReservationID: r.ID,
			Reason:        "declined again",
		})
		if got := decisionReason(t, err); got != booking.ReasonAlreadyProcessed {
			t.Fatalf("reason = %s, want ALREADY_PROCESSED", got)
		}
	})
}

func TestReservationService_ListReservations(t *testing.T) {
	f := newReservationFixture(t)
	mine := f.create(t, "pic-1", booking.PartitionMorning)
	f.create(t, "pic-2", booking.PartitionAfternoon)

	t.Run("non-admin only sees own reservations", func(t *testing.T) {
		got, err := f.service.ListReservations(context.Background(), ListReservationsParams{
			Principal:   Principal{UserID: "pic-1"},
			RequesterID: "pic-2",
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].ID != mine.ID {
			t.Fatalf("got %+v, want only %s", got, mine.ID)
		}
	})

	t.Run("admin may filter by requester", func(t *testing.T) {
		got, err := f.service.ListReservations(context.Background(), ListReservationsParams{
			Principal:   Principal{UserID: "admin-1", IsAdmin: true},
			RequesterID: "pic-2",
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].RequesterID != "pic-2" {
			t.Fatalf("got %+v, want pic-2's reservation", got)
		}
	})
}

func TestReservationService_GetReservation(t *testing.T) {
	f := newReservationFixture(t)
	r := f.create(t, "pic-1", booking.PartitionMorning)

	if _, err := f.service.GetReservation(context.Background(), GetReservationParams{
		Principal:     Principal{UserID: "pic-2"},
		ReservationID: r.ID,
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign reservation, got %v", err)
	}

	got, err := f.service.GetReservation(context.Background(), GetReservationParams{
		Principal:     Principal{UserID: "admin-1", IsAdmin: true},
		ReservationID: r.ID,
	})
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if got.ID != r.ID {
		t.Fatalf("got %q, want %q", got.ID, r.ID)
	}
}

func TestReservationService_ComputeAvailability(t *testing.T) {
	f := newReservationFixture(t)
	morning := f.create(t, "pic-1", booking.PartitionMorning)

	if _, err := f.service.Approve(context.Background(), ApproveReservationParams{
		Principal:     Principal{UserID: "admin-1", IsAdmin: true},
		ReservationID: morning.ID,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	board, err := f.service.ComputeAvailability(context.Background(), AvailabilityParams{
		Principal: Principal{UserID: "pic-1"},
		Date:      bookingDate,
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("board has %d rooms, want 1", len(board))
	}

	statuses := make(map[booking.Partition]booking.Status, 3)
	for _, p := range board[0].Partitions {
		statuses[p.Partition] = p.Status
	}
	if statuses[booking.PartitionMorning] != booking.StatusTaken {
		t.Errorf("morning = %s, want TAKEN", statuses[booking.PartitionMorning])
	}
	if statuses[booking.PartitionAfternoon] != booking.StatusAvailable {
		t.Errorf("afternoon = %s, want AVAILABLE", statuses[booking.PartitionAfternoon])
	}
	if statuses[booking.PartitionFullDay] != booking.StatusRestricted {
		t.Errorf("full day = %s, want RESTRICTED", statuses[booking.PartitionFullDay])
	}

	t.Run("narrows the board to one room", func(t *testing.T) {
		f.rooms.rooms["room-2"] = Room{ID: "room-2", Name: "Ruang Rapat B", Capacity: 8}

		narrowed, err := f.service.ComputeAvailability(context.Background(), AvailabilityParams{
			Principal: Principal{UserID: "pic-1"},
			Date:      bookingDate,
			RoomID:    "room-2",
		})
		if err != nil {
			t.Fatalf("availability: %v", err)
		}
		if len(narrowed) != 1 || narrowed[0].Room.ID != "room-2" {
			t.Fatalf("board = %+v, want only room-2", narrowed)
		}
	})

	t.Run("rejects an unknown room filter", func(t *testing.T) {
		_, err := f.service.ComputeAvailability(context.Background(), AvailabilityParams{
			Principal: Principal{UserID: "pic-1"},
			Date:      bookingDate,
			RoomID:    "ghost",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestReservationService_ApprovedNeverOverlap drives random admission
// and adjudication traffic and checks that no two approved
// reservations of the same room and date ever hold overlapping
// partitions.
func TestReservationService_ApprovedNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := newReservationFixture(t)
	ctx := context.Background()

	partitions := booking.Partitions()
	var ids []string

	for i := 0; i < 200; i++ {
		switch rng.Intn(3) {
		case 0:
			requester := fmt.Sprintf("pic-%d", rng.Intn(6))
			result, err := f.service.CreateReservation(ctx, CreateReservationParams{
				Principal: Principal{UserID: requester},
				Input: ReservationInput{
					RoomID:       "room-1",
					Date:         bookingDate,
					Partition:    partitions[rng.Intn(len(partitions))],
					LetterNumber: "LN-prop",
					Agenda:       "Rapat",
					MeetingType:  MeetingTypeInternal,
				},
			})
			if err == nil {
				ids = append(ids, result.Reservation.ID)
			}
		case 1:
			if len(ids) == 0 {
				continue
			}
			f.service.Approve(ctx, ApproveReservationParams{
				Principal:     Principal{UserID: "admin-1", IsAdmin: true},
				ReservationID: ids[rng.Intn(len(ids))],
			})
		case 2:
			if len(ids) == 0 {
				continue
			}
			f.service.Reject(ctx, RejectReservationParams{
				Principal:     Principal{UserID: "admin-1", IsAdmin: true},
				ReservationID: ids[rng.Intn(len(ids))],
				Reason:        "declined",
			})
		}

		approved, err := f.repo.ListForRoomAndDate(ctx, "room-1", bookingDate, []string{StatusApproved})
		if err != nil {
			t.Fatalf("list approved: %v", err)
		}
		for a := 0; a < len(approved); a++ {
			for b := a + 1; b < len(approved); b++ {
				if booking.Overlaps(approved[a].Partition, approved[b].Partition) {
					t.Fatalf("step %d: approved overlap between %s (%s) and %s (%s)",
						i, approved[a].ID, approved[a].Partition, approved[b].ID, approved[b].Partition)
				}
			}
		}
	}
}
