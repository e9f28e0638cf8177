// Package locale renders the few user-facing strings of the biorhythm report:
// day labels, the insight prompt and fallback, and calendar event titles.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog holds every embedded translation.
type Catalog struct {
	bundle  *i18n.Bundle
	tags    []language.Tag // tags[0] is the default language
	matcher language.Matcher
}

// NewCatalog loads the embedded locales/active.<lang>.json files.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	tags := []language.Tag{language.English}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)

		if tag != language.English {
			tags = append(tags, tag)
		}
	}

	return &Catalog{
		bundle:  bundle,
		tags:    tags,
		matcher: language.NewMatcher(tags),
	}, nil
}

// Languages lists the supported base language codes, default first.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tags))
	for _, t := range c.tags {
		base, _ := t.Base()
		out = append(out, base.String())
	}
	return out
}

// Resolve picks the best supported language for the given preferences.
// Each preference may be a plain code ("ko") or an Accept-Language value
// ("ko-KR,ko;q=0.9,en;q=0.8"). Unknown or empty input yields the default.
func (c *Catalog) Resolve(prefs ...string) string {
	var wanted []language.Tag
	for _, p := range prefs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, parsed...)
	}

	idx := 0
	if len(wanted) > 0 {
		if _, i, conf := c.matcher.Match(wanted...); conf != language.No {
			idx = i
		}
	}
	base, _ := c.tags[idx].Base()
	return base.String()
}

// Localizer returns a translator for the best match among prefs.
func (c *Catalog) Localizer(prefs ...string) *Localizer {
	lang := c.Resolve(prefs...)
	return &Localizer{
		loc:  i18n.NewLocalizer(c.bundle, lang),
		lang: lang,
	}
}

// Localizer translates message keys for one language.
// It implements engine.DayLabeler.
type Localizer struct {
	loc  *i18n.Localizer
	lang string
}

var _ engine.DayLabeler = (*Localizer)(nil)

// Lang returns the resolved base language code.
func (l *Localizer) Lang() string {
	if l == nil {
		return config.DefaultLanguage
	}
	return l.lang
}

// Msg translates key. A missing key (or a nil Localizer) returns the key itself.
func (l *Localizer) Msg(key string, data map[string]any) string {
	if l == nil || l.loc == nil {
		return key
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyLang, l.lang,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// TodayLabel implements engine.DayLabeler.
func (l *Localizer) TodayLabel() string {
	if msg := l.Msg(config.TKeyLabelToday, nil); msg != config.TKeyLabelToday {
		return msg
	}
	return engine.EnglishLabels{}.TodayLabel()
}

// DayLabel implements engine.DayLabeler with the short weekday name.
func (l *Localizer) DayLabel(day time.Time) string {
	key := config.WeekdayKeys[day.Weekday()]
	if msg := l.Msg(key, nil); msg != key {
		return msg
	}
	return engine.EnglishLabels{}.DayLabel(day)
}

// ScoreData exposes a triple to message templates as Physical, Emotional and Intellectual.
func ScoreData(s engine.ScoreTriple) map[string]any {
	return map[string]any{
		"Physical":     s.Physical,
		"Emotional":    s.Emotional,
		"Intellectual": s.Intellectual,
	}
}
