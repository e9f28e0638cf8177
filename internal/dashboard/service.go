// Package dashboard binds the live date, the biorhythm projection and the
// insight text into the view served by the CLI and the HTTP server.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/engine"
	"github.com/tartampluch/go-biorhythm/internal/insight"
	"github.com/tartampluch/go-biorhythm/internal/locale"
)

// InsightProvider returns the motivational text for a set of scores.
// *insight.Service implements it.
type InsightProvider interface {
	Insight(ctx context.Context, req insight.Request) string
}

// View is a report together with everything needed to display it.
type View struct {
	engine.Report
	Insight      string           `json:"insight"`
	BirthDate    engine.BirthDate `json:"birthDate"`
	ReferenceDay time.Time        `json:"referenceDay"`
	Lang         string           `json:"lang"`
}

// Service builds Views. A nil Clock uses the real time; a nil Catalog uses
// English labels; nil Insights always yields the fallback text.
type Service struct {
	Clock    engine.Clock
	Catalog  *locale.Catalog
	Insights InsightProvider
}

func (s *Service) clock() engine.Clock {
	if s.Clock == nil {
		return engine.RealClock{}
	}
	return s.Clock
}

func (s *Service) localizer(langs ...string) *locale.Localizer {
	if s.Catalog == nil {
		return nil
	}
	return s.Catalog.Localizer(langs...)
}

// Build computes the view for birth (any accepted birth-date layout) as of today.
// langs are language preferences, most preferred first.
// An unparsable birth date returns an *engine.InvalidDateError.
func (s *Service) Build(ctx context.Context, birth string, langs ...string) (View, error) {
	b, err := engine.ParseBirthDate(birth)
	if err != nil {
		return View{}, err
	}
	return s.build(ctx, b, s.localizer(langs...)), nil
}

func (s *Service) build(ctx context.Context, birth engine.BirthDate, loc *locale.Localizer) View {
	ref := engine.Today(s.clock())
	report := engine.Project(birth, ref, loc)

	text := insight.Fallback(loc)
	if s.Insights != nil {
		text = s.Insights.Insight(ctx, insight.Request{
			Scores:    report.ScoreTriple,
			Day:       ref,
			Localizer: loc,
		})
	}

	slog.Debug(config.MsgReportBuilt,
		config.LogKeyComponent, config.CompDashboard,
		config.LogKeyDOB, birth.String(),
		config.LogKeyRefDay, ref.Format(config.DateFormatFullDash),
		config.LogKeyOverall, report.Overall,
		config.LogKeyLang, loc.Lang(),
	)

	return View{
		Report:       report,
		Insight:      text,
		BirthDate:    birth,
		ReferenceDay: ref,
		Lang:         loc.Lang(),
	}
}

// Calendar renders the view for birth as an iCalendar document.
func (s *Service) Calendar(ctx context.Context, birth string, langs ...string) ([]byte, error) {
	b, err := engine.ParseBirthDate(birth)
	if err != nil {
		return nil, err
	}

	loc := s.localizer(langs...)
	view := s.build(ctx, b, loc)

	name := loc.Msg(config.TKeyCalName, nil)
	if name == config.TKeyCalName {
		name = config.FallbackCalName
	}

	var summary func(engine.TrendPoint) string
	if loc != nil {
		summary = func(p engine.TrendPoint) string {
			return loc.Msg(config.TKeyEvtSummary, locale.ScoreData(p.ScoreTriple))
		}
	}

	return engine.BuildCalendar(view.Report, engine.CalendarOptions{
		Subject:     view.BirthDate.String(),
		Stamp:       s.clock().Now(),
		Name:        name,
		Summary:     summary,
		Description: view.Insight,
	})
}
