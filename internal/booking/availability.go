package booking

import "time"

// Status classifies a partition for availability displays.
type Status string

const (
	// StatusAvailable marks a partition that may still be requested.
	StatusAvailable Status = "AVAILABLE"
	// StatusTaken marks a partition held by an approved reservation.
	StatusTaken Status = "TAKEN"
	// StatusRestricted marks a partition suppressed by the overlap or
	// elapsed-time rules rather than an outright booking.
	StatusRestricted Status = "RESTRICTED"
)

// PartitionStatuses classifies every partition of a room for the given
// date. approved holds the partitions of that room's APPROVED
// reservations on the date; now supplies the elapsed-time cutoff when
// the date is today in the operating timezone.
func PartitionStatuses(approved []Partition, date, now time.Time) map[Partition]Status {
	today := IsToday(date, now)
	hour := HourOfDay(now)

	statuses := make(map[Partition]Status, 3)
	for _, p := range Partitions() {
		statuses[p] = partitionStatus(p, approved, today, hour)
	}
	return statuses
}

func partitionStatus(p Partition, approved []Partition, today bool, hour int) Status {
	overlapping := false
	for _, held := range approved {
		if held == p {
			return StatusTaken
		}
		if Overlaps(held, p) {
			overlapping = true
		}
	}
	if overlapping {
		return StatusRestricted
	}
	if today && Elapsed(p, hour) {
		return StatusRestricted
	}
	return StatusAvailable
}

// AvailablePartitions returns the partitions of a room that are still
// bookable on the given date, in canonical order. The result is the
// full partition set minus everything overlapping an approved
// reservation and, when the date is today, minus partitions whose
// offerability window has elapsed.
func AvailablePartitions(approved []Partition, date, now time.Time) []Partition {
	statuses := PartitionStatuses(approved, date, now)

	available := make([]Partition, 0, 3)
	for _, p := range Partitions() {
		if statuses[p] == StatusAvailable {
			available = append(available, p)
		}
	}
	return available
}
