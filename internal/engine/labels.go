package engine

import (
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
)

// DayLabeler turns calendar days into display labels for the trend.
// Localized implementations live with the presentation layer.
type DayLabeler interface {
	// TodayLabel is the label of the reference day itself.
	TodayLabel() string
	// DayLabel labels any other day of the window.
	DayLabel(day time.Time) string
}

// EnglishLabels is the built-in labeler: "today", then "Mon", "Tue", ...
type EnglishLabels struct{}

func (EnglishLabels) TodayLabel() string {
	return config.FallbackTodayLabel
}

func (EnglishLabels) DayLabel(day time.Time) string {
	return day.Weekday().String()[:3]
}
