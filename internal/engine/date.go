package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
)

// ErrInvalidDate is matched by every *InvalidDateError through errors.Is.
var ErrInvalidDate = errors.New(config.ErrDateParse)

// InvalidDateError reports a birth date that is not a valid calendar date.
type InvalidDateError struct {
	Value  string // raw input as received
	Reason string // short technical cause
	Err    error  // underlying parse error, if any
}

func (e *InvalidDateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %s: %v", config.ErrDateParse, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %q: %s", config.ErrDateParse, e.Value, e.Reason)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidDate) true for any InvalidDateError.
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// BirthDate is a calendar date without time of day.
type BirthDate struct {
	Year  int
	Month time.Month
	Day   int
}

// BirthDateOf takes the calendar date of t in its own location.
func BirthDateOf(t time.Time) BirthDate {
	y, m, d := t.Date()
	return BirthDate{Year: y, Month: m, Day: d}
}

// IsZero reports whether b is the zero value.
func (b BirthDate) IsZero() bool {
	return b == BirthDate{}
}

// String formats b as YYYY-MM-DD.
func (b BirthDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", b.Year, int(b.Month), b.Day)
}

// In returns midnight of b in loc.
func (b BirthDate) In(loc *time.Location) time.Time {
	return time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, loc)
}

// MarshalText implements encoding.TextMarshaler.
func (b BirthDate) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BirthDate) UnmarshalText(text []byte) error {
	parsed, err := ParseBirthDate(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBirthDate accepts the full-date forms found in vCard BDAY fields
// (2006-01-02, 20060102, RFC 3339). Timestamps contribute only their own
// calendar date. Year-less forms such as --01-02 are rejected because the
// projection needs the year.
func ParseBirthDate(value string) (BirthDate, error) {
	raw := value
	value = strings.TrimSpace(value)
	if value == "" {
		return BirthDate{}, &InvalidDateError{Value: raw, Reason: config.ErrDateEmpty}
	}

	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	var firstErr error
	for _, f := range formatsWithYear {
		t, err := time.Parse(f, value)
		if err == nil {
			return BirthDateOf(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if _, err := time.Parse(f, value); err == nil {
			return BirthDate{}, &InvalidDateError{Value: raw, Reason: config.ErrDateNoYear}
		}
	}

	return BirthDate{}, &InvalidDateError{Value: raw, Reason: config.ErrDateUnknown, Err: firstErr}
}

const secondsPerDay = 24 * 60 * 60

// dayNumber counts days since the Unix epoch for a civil date.
// Working on UTC civil dates keeps offsets independent of zones and DST.
func dayNumber(y int, m time.Month, d int) int {
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DayOffset returns the signed number of whole days from birth to the
// calendar date of target. It is negative when target precedes birth.
func DayOffset(birth BirthDate, target time.Time) int {
	y, m, d := target.Date()
	return dayNumber(y, m, d) - dayNumber(birth.Year, birth.Month, birth.Day)
}
