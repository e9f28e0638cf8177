package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-biorhythm/internal/config"
)

// ErrNoBirthday is returned when no card of a vCard stream yields a birth date.
var ErrNoBirthday = errors.New(config.ErrNoBirthday)

// BirthDateFromVCard scans a vCard stream for a birth date.
// With an empty name the first card holding a full BDAY wins; otherwise the
// card whose FN (or N) equals name, case-insensitively. It returns the date
// and the contact's display name.
func BirthDateFromVCard(ctx context.Context, r io.Reader, name string) (BirthDate, string, error) {
	decoder := vcard.NewDecoder(r)
	var matchErr error

	for {
		if err := ctx.Err(); err != nil {
			return BirthDate{}, "", err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		cardName := displayName(card)
		if name != "" && !strings.EqualFold(strings.TrimSpace(cardName), strings.TrimSpace(name)) {
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, err := ParseBirthDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, cardName,
				config.LogKeyValue, bday.Value)
			if name != "" {
				matchErr = err
			}
			continue
		}

		slog.Info(config.MsgContactFound,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, cardName)
		return birth, cardName, nil
	}

	if matchErr != nil {
		return BirthDate{}, "", matchErr
	}
	if name != "" {
		return BirthDate{}, "", fmt.Errorf("%w: %q", ErrNoBirthday, name)
	}
	return BirthDate{}, "", ErrNoBirthday
}

// displayName applies the FN (Formatted) > N (Structured) > fallback strategy.
func displayName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}
