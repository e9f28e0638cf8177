package engine

import (
	"math"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
)

// Cycle is one biorhythm oscillation with a fixed period in days.
type Cycle struct {
	Name   string
	Period int
}

var cycles = [3]Cycle{
	{Name: config.CyclePhysical, Period: config.PeriodPhysical},
	{Name: config.CycleEmotional, Period: config.PeriodEmotional},
	{Name: config.CycleIntellectual, Period: config.PeriodIntellectual},
}

// Cycles returns the physical, emotional and intellectual cycles, in that order.
func Cycles() [3]Cycle {
	return cycles
}

// ScoreTriple holds the three component scores of one day, each in [0, 100].
type ScoreTriple struct {
	Physical     int `json:"physical"`
	Emotional    int `json:"emotional"`
	Intellectual int `json:"intellectual"`
}

// TrendPoint is one day of the projected window.
type TrendPoint struct {
	ScoreTriple
	Day  string    `json:"day"`
	Date time.Time `json:"date"`
}

// Report is the biorhythm projection for a reference day.
// The embedded triple is the reference day's own scores.
type Report struct {
	ScoreTriple
	Overall     int          `json:"overall"`
	WeeklyTrend []TrendPoint `json:"weeklyTrend"`
}

// Today returns the reference-day point of the trend.
func (r Report) Today() TrendPoint {
	return r.WeeklyTrend[0]
}

// Score maps a day offset onto [0, 100] for a single period:
//
//	round((sin(2*pi*offset/period) + 1) * 50)
//
// The offset is reduced modulo the period first, so score(d) == score(d+period)
// holds exactly in floating point. Rounding is math.Round (half away from zero).
func Score(dayOffset, period int) int {
	phase := dayOffset % period
	if phase < 0 {
		phase += period
	}
	v := math.Round((math.Sin(2*math.Pi*float64(phase)/float64(period)) + 1) * config.ScoreBaseline)
	return clamp(int(v))
}

func clamp(v int) int {
	switch {
	case v < config.ScoreMin:
		return config.ScoreMin
	case v > config.ScoreMax:
		return config.ScoreMax
	default:
		return v
	}
}

// ComputeScoreTriple evaluates the three cycles at the same day offset.
func ComputeScoreTriple(dayOffset int) ScoreTriple {
	return ScoreTriple{
		Physical:     Score(dayOffset, cycles[0].Period),
		Emotional:    Score(dayOffset, cycles[1].Period),
		Intellectual: Score(dayOffset, cycles[2].Period),
	}
}

// Overall is the rounded arithmetic mean of the three scores.
func Overall(s ScoreTriple) int {
	return int(math.Round(float64(s.Physical+s.Emotional+s.Intellectual) / 3))
}

// ComputeReport parses birthDate and projects it from referenceDay.
// It returns an *InvalidDateError, and a zero Report, when the birth date
// cannot be parsed.
func ComputeReport(birthDate string, referenceDay time.Time, labels DayLabeler) (Report, error) {
	birth, err := ParseBirthDate(birthDate)
	if err != nil {
		return Report{}, err
	}
	return Project(birth, referenceDay, labels), nil
}

// Project builds the report for the TrendDays days starting at referenceDay.
// referenceDay is normalized to midnight of its own location, so any time of
// the same day gives the same report. A nil labeler selects EnglishLabels.
func Project(birth BirthDate, referenceDay time.Time, labels DayLabeler) Report {
	if labels == nil {
		labels = EnglishLabels{}
	}
	start := StartOfDay(referenceDay)
	y, m, d := start.Date()

	trend := make([]TrendPoint, config.TrendDays)
	for i := range trend {
		// Date arithmetic on the calendar keeps every point at midnight across DST changes.
		day := time.Date(y, m, d+i, 0, 0, 0, 0, start.Location())

		label := labels.TodayLabel()
		if i > 0 {
			label = labels.DayLabel(day)
		}

		trend[i] = TrendPoint{
			ScoreTriple: ComputeScoreTriple(DayOffset(birth, day)),
			Day:         label,
			Date:        day,
		}
	}

	return Report{
		ScoreTriple: trend[0].ScoreTriple,
		Overall:     Overall(trend[0].ScoreTriple),
		WeeklyTrend: trend,
	}
}
