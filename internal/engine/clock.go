package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Callers use it to bind the reference day; the projection itself never reads it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns midnight of the clock's current calendar day, in the clock's location.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now())
}

// StartOfDay strips the time of day, keeping the calendar date and location of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FixedClock always reports the same instant. The CLI uses it to pin the
// reference day (--date).
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f FixedClock) Now() time.Time {
	return f.Time
}
