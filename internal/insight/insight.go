// Package insight produces the short motivational text shown next to a
// biorhythm report. The text comes from a generative model; any failure
// degrades to a localized fallback sentence.
package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/engine"
	"github.com/tartampluch/go-biorhythm/internal/locale"
)

// Key identifies a cached insight. Two requests with the same day, language
// and scores get the same text.
type Key struct {
	Day    string // YYYY-MM-DD
	Lang   string
	Scores engine.ScoreTriple
}

// Cache stores generated insights between runs.
type Cache interface {
	Lookup(ctx context.Context, key Key) (string, bool, error)
	Store(ctx context.Context, key Key, message string) error
}

// Request carries the same-day scores the text is based on.
type Request struct {
	Scores    engine.ScoreTriple
	Day       time.Time
	Localizer *locale.Localizer
}

// Service combines a Model, an optional Cache and a fallback.
// A zero Service always answers with the fallback text.
type Service struct {
	Model   Model
	Cache   Cache
	Timeout time.Duration
}

// BuildPrompt renders the localized prompt for the three scores.
func BuildPrompt(loc *locale.Localizer, scores engine.ScoreTriple) string {
	return loc.Msg(config.TKeyInsightPrompt, locale.ScoreData(scores))
}

// Fallback is the text used whenever the model cannot answer.
func Fallback(loc *locale.Localizer) string {
	if msg := loc.Msg(config.TKeyInsightDefault, nil); msg != config.TKeyInsightDefault {
		return msg
	}
	return config.FallbackInsight
}

// Insight returns the text for req. It never fails: errors are logged and
// replaced by Fallback.
func (s *Service) Insight(ctx context.Context, req Request) string {
	key := Key{
		Day:    req.Day.Format(config.DateFormatFullDash),
		Lang:   req.Localizer.Lang(),
		Scores: req.Scores,
	}
	log := slog.With(config.LogKeyComponent, config.CompInsight, config.LogKeyLang, key.Lang)

	if s.Cache != nil {
		msg, ok, err := s.Cache.Lookup(ctx, key)
		switch {
		case err != nil:
			log.Warn(config.ErrStoreQuery, config.LogKeyError, err)
		case ok:
			log.Debug(config.MsgInsightHit)
			return msg
		}
	}

	if s.Model == nil {
		return Fallback(req.Localizer)
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	log.Debug(config.MsgInsightMiss)
	msg, err := s.Model.Generate(callCtx, BuildPrompt(req.Localizer, req.Scores))
	if err != nil {
		log.Warn(config.ErrInsightFallback,
			config.LogKeyError, err,
			config.LogKeyDuration, time.Since(start).Milliseconds())
		return Fallback(req.Localizer)
	}

	if s.Cache != nil {
		if err := s.Cache.Store(ctx, key, msg); err != nil {
			log.Warn(config.MsgInsightStore, config.LogKeyError, err)
		}
	}
	return msg
}
