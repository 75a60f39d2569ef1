package booking

import (
	"testing"
	"time"
)

// witaTime builds an instant at the given WITA wall-clock hour on the
// given date.
func witaTime(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, WITA())
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAvailablePartitions(t *testing.T) {
	date := utcDate(2024, time.June, 10)

	cases := []struct {
		name     string
		approved []Partition
		now      time.Time
		want     []Partition
	}{
		{
			name: "empty room on a future date",
			now:  witaTime(2024, time.June, 1, 10),
			want: []Partition{PartitionMorning, PartitionAfternoon, PartitionFullDay},
		},
		{
			name:     "approved morning removes full day",
			approved: []Partition{PartitionMorning},
			now:      witaTime(2024, time.June, 1, 10),
			want:     []Partition{PartitionAfternoon},
		},
		{
			name:     "approved full day removes everything",
			approved: []Partition{PartitionFullDay},
			now:      witaTime(2024, time.June, 1, 10),
			want:     []Partition{},
		},
		{
			name:     "approved afternoon keeps morning",
			approved: []Partition{PartitionAfternoon},
			now:      witaTime(2024, time.June, 1, 10),
			want:     []Partition{PartitionMorning},
		},
		{
			// Scenario: 09:00 WITA on the queried date. Full day is
			// gone (start hour passed) but the in-progress morning and
			// the untouched afternoon remain offerable.
			name: "mid-morning today",
			now:  witaTime(2024, time.June, 10, 9),
			want: []Partition{PartitionMorning, PartitionAfternoon},
		},
		{
			name: "after morning end today",
			now:  witaTime(2024, time.June, 10, 12),
			want: []Partition{PartitionAfternoon},
		},
		{
			name: "after afternoon end today",
			now:  witaTime(2024, time.June, 10, 16),
			want: []Partition{},
		},
		{
			name: "before working hours today",
			now:  witaTime(2024, time.June, 10, 7),
			want: []Partition{PartitionMorning, PartitionAfternoon, PartitionFullDay},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AvailablePartitions(tc.approved, date, tc.now)
			if len(got) != len(tc.want) {
				t.Fatalf("AvailablePartitions = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("AvailablePartitions = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestAvailablePartitionsNeverContainsApprovedOverlap(t *testing.T) {
	date := utcDate(2024, time.June, 10)
	now := witaTime(2024, time.June, 1, 10)

	holdings := [][]Partition{
		{},
		{PartitionMorning},
		{PartitionAfternoon},
		{PartitionFullDay},
		{PartitionMorning, PartitionAfternoon},
	}

	for _, approved := range holdings {
		available := AvailablePartitions(approved, date, now)
		for _, a := range available {
			for _, held := range approved {
				if Overlaps(a, held) {
					t.Fatalf("available %s overlaps approved %s (approved set %v)", a, held, approved)
				}
			}
		}
	}
}

func TestPartitionStatuses(t *testing.T) {
	date := utcDate(2024, time.June, 10)
	future := witaTime(2024, time.June, 1, 10)

	t.Run("identical booking is taken, overlap is restricted", func(t *testing.T) {
		statuses := PartitionStatuses([]Partition{PartitionMorning}, date, future)

		if statuses[PartitionMorning] != StatusTaken {
			t.Fatalf("morning = %s, want %s", statuses[PartitionMorning], StatusTaken)
		}
		if statuses[PartitionFullDay] != StatusRestricted {
			t.Fatalf("full day = %s, want %s", statuses[PartitionFullDay], StatusRestricted)
		}
		if statuses[PartitionAfternoon] != StatusAvailable {
			t.Fatalf("afternoon = %s, want %s", statuses[PartitionAfternoon], StatusAvailable)
		}
	})

	t.Run("full day booking restricts both half days", func(t *testing.T) {
		statuses := PartitionStatuses([]Partition{PartitionFullDay}, date, future)

		if statuses[PartitionFullDay] != StatusTaken {
			t.Fatalf("full day = %s, want %s", statuses[PartitionFullDay], StatusTaken)
		}
		if statuses[PartitionMorning] != StatusRestricted || statuses[PartitionAfternoon] != StatusRestricted {
			t.Fatalf("half days = %s/%s, want both %s", statuses[PartitionMorning], statuses[PartitionAfternoon], StatusRestricted)
		}
	})

	t.Run("elapsed sessions are restricted today", func(t *testing.T) {
		statuses := PartitionStatuses(nil, date, witaTime(2024, time.June, 10, 13))

		if statuses[PartitionMorning] != StatusRestricted {
			t.Fatalf("morning = %s, want %s", statuses[PartitionMorning], StatusRestricted)
		}
		if statuses[PartitionFullDay] != StatusRestricted {
			t.Fatalf("full day = %s, want %s", statuses[PartitionFullDay], StatusRestricted)
		}
		if statuses[PartitionAfternoon] != StatusAvailable {
			t.Fatalf("afternoon = %s, want %s", statuses[PartitionAfternoon], StatusAvailable)
		}
	})
}

func TestIsToday(t *testing.T) {
	date := utcDate(2024, time.June, 10)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "same WITA day", now: witaTime(2024, time.June, 10, 9), want: true},
		{name: "previous WITA day", now: witaTime(2024, time.June, 9, 23), want: false},
		{name: "next WITA day", now: witaTime(2024, time.June, 11, 1), want: false},
		{
			// 23:00 UTC on the 9th is already 07:00 on the 10th in WITA.
			name: "utc instant crossing into the WITA day",
			now:  time.Date(2024, time.June, 9, 23, 0, 0, 0, time.UTC),
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsToday(date, tc.now); got != tc.want {
				t.Fatalf("IsToday = %v, want %v", got, tc.want)
			}
		})
	}
}
