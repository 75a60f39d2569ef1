package booking

import "time"

// The deployment site runs on Central Indonesia Time, a fixed UTC+8
// offset with no daylight saving. All "has this session already elapsed
// today" comparisons use this zone, while the reservation date itself is
// stored at UTC midnight.
var wita = time.FixedZone("WITA", 8*60*60)

// WITA returns the fixed UTC+8 location used for time-of-day cutoffs.
func WITA() *time.Location {
	return wita
}

// DateOnly truncates t to UTC midnight, the canonical representation of
// a reservation date.
func DateOnly(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// IsToday reports whether date (a UTC-midnight reservation date) falls
// on the same calendar day as now in the operating timezone.
func IsToday(date, now time.Time) bool {
	d := date.UTC()
	local := now.In(wita)
	return d.Year() == local.Year() && d.Month() == local.Month() && d.Day() == local.Day()
}

// HourOfDay returns the hour component of now in the operating timezone.
func HourOfDay(now time.Time) int {
	return now.In(wita).Hour()
}
