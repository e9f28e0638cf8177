package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-biorhythm/internal/config"
)

// CalendarOptions controls the iCalendar rendering of a Report.
type CalendarOptions struct {
	// Subject identifies whose biorhythm this is (usually the birth date).
	// It seeds the event UIDs so clients see stable events across refreshes.
	Subject string

	// Stamp is written as DTSTAMP. It comes from the caller's clock.
	Stamp time.Time

	// Name is the calendar display name (X-WR-CALNAME).
	Name string

	// Summary formats the event title of a trend point.
	// Nil uses config.FallbackSummary.
	Summary func(p TrendPoint) string

	// Description is attached to the reference-day event, typically the insight text.
	Description string
}

// BuildCalendar renders the weekly trend as one all-day event per day.
func BuildCalendar(r Report, opts CalendarOptions) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	name := opts.Name
	if name == "" {
		name = config.FallbackCalName
	}
	cal.Props.SetText(config.PropXWRCalName, name)

	// RFC 7986: the feed changes daily, an hourly refresh is plenty.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(opts.Stamp.UTC())

	summary := opts.Summary
	if summary == nil {
		summary = func(p TrendPoint) string {
			return fmt.Sprintf(config.FallbackSummary, p.Physical, p.Emotional, p.Intellectual)
		}
	}

	for i, p := range r.WeeklyTrend {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(opts.Subject, p.Date))
		event.Props.SetText(config.PropSummary, summary(p))
		event.Props.SetText(config.PropCategories, config.ICalCategory)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(p.Date)
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		if i == 0 && opts.Description != "" {
			event.Props.SetText(config.PropDescription, opts.Description)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// eventUID derives a deterministic UID from the subject and the event day.
func eventUID(subject string, day time.Time) string {
	input := fmt.Sprintf(config.FormatHashInput, subject, day.Format(config.DateFormatFullDash), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
