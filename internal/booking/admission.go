package booking

import "time"

// Reason is the closed set of codes a reservation decision can fail
// with. Callers branch on the code; Message supplies the text surfaced
// to users.
type Reason string

const (
	ReasonPastDate               Reason = "PAST_DATE"
	ReasonSessionAlreadyStarted  Reason = "SESSION_ALREADY_STARTED"
	ReasonDuplicateRequest       Reason = "DUPLICATE_REQUEST"
	ReasonSessionTaken           Reason = "SESSION_TAKEN"
	ReasonPartiallyBooked        Reason = "PARTIALLY_BOOKED"
	ReasonFullyBooked            Reason = "FULLY_BOOKED"
	ReasonNotFound               Reason = "NOT_FOUND"
	ReasonAlreadyProcessed       Reason = "ALREADY_PROCESSED"
	ReasonSessionAlreadyApproved Reason = "SESSION_ALREADY_APPROVED"
	ReasonEmptyReason            Reason = "EMPTY_REASON"
	ReasonStorageError           Reason = "STORAGE_ERROR"
)

// Message returns the user-facing text for the reason code.
func (r Reason) Message() string {
	switch r {
	case ReasonPastDate:
		return "Cannot book for past dates."
	case ReasonSessionAlreadyStarted:
		return "The requested session has already started or passed."
	case ReasonDuplicateRequest:
		return "You already have a booking for this room, date, and session."
	case ReasonSessionTaken:
		return "This room is no longer available for the selected session. Please refresh and try another time."
	case ReasonPartiallyBooked:
		return "This room is partially booked during fullday hours. Please select a different date or session."
	case ReasonFullyBooked:
		return "This room is fully booked during this time. Please select a different date or session."
	case ReasonNotFound:
		return "Booking not found."
	case ReasonAlreadyProcessed:
		return "Booking already processed."
	case ReasonSessionAlreadyApproved:
		return "Room already approved for this session."
	case ReasonEmptyReason:
		return "Rejection reason is required."
	case ReasonStorageError:
		return "Storage operation failed."
	}
	return string(r)
}

// AdmissionRequest carries the attributes of a new reservation request
// relevant to conflict checking.
type AdmissionRequest struct {
	RequesterID string
	Partition   Partition
	Date        time.Time
}

// ExistingReservation is the projection of a persisted reservation the
// admission checks inspect. The slice handed to CheckAdmission must
// contain exactly the PENDING and APPROVED reservations of the
// requested room and date.
type ExistingReservation struct {
	RequesterID string
	Partition   Partition
	Approved    bool
}

// CheckAdmission validates a reservation request against the room's
// current reservations. It returns the empty reason when the request
// may be admitted, otherwise the code of the first failing check. The
// checks run in a fixed order and stop at the first failure:
//
//  1. the date must not precede the current UTC date (PAST_DATE)
//  2. if the date is today, the partition's offerability window must
//     not have elapsed (SESSION_ALREADY_STARTED)
//  3. the requester must not already hold a pending or approved
//     reservation for the same partition (DUPLICATE_REQUEST)
//  4. no approved reservation may hold the identical partition
//     (SESSION_TAKEN)
//  5. no approved reservation may hold an overlapping partition
//     (PARTIALLY_BOOKED when requesting full day over a held half day,
//     FULLY_BOOKED when requesting a half day under a held full day)
//
// Pending reservations from other requesters never block admission;
// exclusivity among them is resolved at approval time.
func CheckAdmission(req AdmissionRequest, existing []ExistingReservation, now time.Time) Reason {
	date := DateOnly(req.Date)

	if date.Before(DateOnly(now)) {
		return ReasonPastDate
	}

	if IsToday(date, now) && Elapsed(req.Partition, HourOfDay(now)) {
		return ReasonSessionAlreadyStarted
	}

	for _, held := range existing {
		if held.RequesterID == req.RequesterID && held.Partition == req.Partition {
			return ReasonDuplicateRequest
		}
	}

	for _, held := range existing {
		if held.Approved && held.Partition == req.Partition {
			return ReasonSessionTaken
		}
	}

	for _, held := range existing {
		if !held.Approved || !Overlaps(held.Partition, req.Partition) {
			continue
		}
		if req.Partition == PartitionFullDay {
			return ReasonPartiallyBooked
		}
		return ReasonFullyBooked
	}

	return ""
}
