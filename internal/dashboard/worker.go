package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/engine"
)

// Publisher receives each regenerated feed. *server.CalendarServer implements it.
type Publisher interface {
	Update(data []byte)
}

// Pruner drops cached insights older than a cut-off day.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// FeedWorker keeps a published iCalendar feed current for one birth date.
type FeedWorker struct {
	Service   *Service
	Birth     string
	Lang      string
	Interval  time.Duration
	Publisher Publisher

	// Optional cache housekeeping, run after each refresh.
	Pruner     Pruner
	RetainDays int
}

// Run refreshes the feed immediately, then on every tick, until ctx is done.
// A failed refresh is logged and the previously published feed stays in place.
func (w *FeedWorker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	interval := w.Interval
	if interval <= 0 {
		interval = time.Duration(config.DefaultRefreshMin) * time.Minute
	}

	w.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *FeedWorker) refresh(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	data, err := w.Service.Calendar(ctx, w.Birth, w.Lang)
	if err != nil {
		log.Error(config.ErrFeedGenerate, config.LogKeyError, err)
		return
	}
	w.Publisher.Update(data)
	log.Info(config.MsgFeedUpdated, config.LogKeySizeBytes, len(data))

	if w.Pruner == nil || w.RetainDays <= 0 {
		return
	}
	cutoff := engine.Today(w.Service.clock()).AddDate(0, 0, -w.RetainDays)
	if _, err := w.Pruner.Prune(ctx, cutoff); err != nil {
		log.Warn(config.ErrStoreQuery, config.LogKeyError, err)
	}
}
