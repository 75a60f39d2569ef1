// Package booking contains the pure decision logic of the reservation
// engine: the fixed daily time partitions, their overlap relation, the
// availability calculator, and the admission checks. Nothing in this
// package performs I/O; services feed it data and act on its verdicts.
package booking

// Partition identifies one of the three fixed reservable windows of a
// room day.
type Partition string

const (
	// PartitionMorning covers 08:00-12:00 local time.
	PartitionMorning Partition = "MORNING"
	// PartitionAfternoon covers 13:00-16:00 local time.
	PartitionAfternoon Partition = "AFTERNOON"
	// PartitionFullDay covers 08:00-16:00 local time and conflicts with
	// both half-day partitions.
	PartitionFullDay Partition = "FULL_DAY"
)

// Partitions returns every reservable partition in canonical order.
func Partitions() []Partition {
	return []Partition{PartitionMorning, PartitionAfternoon, PartitionFullDay}
}

// Valid reports whether p is one of the defined partitions.
func (p Partition) Valid() bool {
	switch p {
	case PartitionMorning, PartitionAfternoon, PartitionFullDay:
		return true
	}
	return false
}

// StartHour returns the hour-of-day at which the partition begins.
func (p Partition) StartHour() int {
	if p == PartitionAfternoon {
		return 13
	}
	return 8
}

// EndHour returns the hour-of-day at which the partition ends.
func (p Partition) EndHour() int {
	if p == PartitionMorning {
		return 12
	}
	return 16
}

// Elapsed reports whether the partition can no longer be entered on the
// current day once the clock reaches hour. Half-day sessions stay
// offerable while in progress and close at their end hour; a full-day
// commitment cannot begin retroactively, so it closes at its start
// hour. The asymmetry is deliberate.
func Elapsed(p Partition, hour int) bool {
	if p == PartitionFullDay {
		return hour >= p.StartHour()
	}
	return hour >= p.EndHour()
}

// Overlaps reports whether two same-date partitions occupy intersecting
// time windows. The relation is symmetric and reflexive; the half-day
// partitions are the only distinct pair that does not overlap. Every
// conflict decision in the engine consults this function.
func Overlaps(a, b Partition) bool {
	if a == b {
		return true
	}
	return a == PartitionFullDay || b == PartitionFullDay
}

// ConflictingWith returns the partitions other than p that overlap p.
func ConflictingWith(p Partition) []Partition {
	if p == PartitionFullDay {
		return []Partition{PartitionMorning, PartitionAfternoon}
	}
	return []Partition{PartitionFullDay}
}
