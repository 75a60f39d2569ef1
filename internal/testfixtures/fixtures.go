// Package testfixtures provides deterministic clocks, identifier
// generators, and shared reference instants for service tests.
package testfixtures

import "time"

// ReferenceTime returns the canonical "now" used by fixtures: a mid
// morning instant, 10:00 in UTC+8, well before any session cutoff.
func ReferenceTime() time.Time {
	return time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
}

// ReferenceDate returns the canonical booking date used by fixtures,
// normalized to UTC midnight and safely in the future relative to
// ReferenceTime.
func ReferenceDate() time.Time {
	return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
}
