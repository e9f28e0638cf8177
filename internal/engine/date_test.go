package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/engine"
)

func TestParseBirthDate_Formats(t *testing.T) {
	want := engine.BirthDate{Year: 1990, Month: time.January, Day: 31}

	tests := []struct {
		name  string
		input string
	}{
		{"Dashed", "1990-01-31"},
		{"Basic", "19900131"},
		{"RFC3339", "1990-01-31T10:00:00+09:00"},
		{"UTC timestamp", "1990-01-31T00:00:00Z"},
		{"Surrounding spaces", "  1990-01-31 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ParseBirthDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseBirthDate_TimestampKeepsOwnCalendarDate(t *testing.T) {
	// 23:30 in Seoul is still the 31st there, even though it is the 31st 14:30 UTC.
	got, err := engine.ParseBirthDate("1990-01-31T23:30:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, 31, got.Day)
}

func TestParseBirthDate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{"Empty", "", config.ErrDateEmpty},
		{"Blank", "   ", config.ErrDateEmpty},
		{"Garbage", "not-a-date", config.ErrDateUnknown},
		{"Day out of range", "1990-02-30", config.ErrDateUnknown},
		{"Non leap Feb 29", "1990-02-29", config.ErrDateUnknown},
		{"Year unknown dashed", "--02-29", config.ErrDateNoYear},
		{"Year unknown basic", "--0229", config.ErrDateNoYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ParseBirthDate(tt.input)

			var invalid *engine.InvalidDateError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantReason, invalid.Reason)
			assert.Contains(t, err.Error(), config.ErrDateParse)
		})
	}
}

func TestParseBirthDate_LeapDay(t *testing.T) {
	got, err := engine.ParseBirthDate("2000-02-29")
	require.NoError(t, err)
	assert.Equal(t, engine.BirthDate{Year: 2000, Month: time.February, Day: 29}, got)
}

func TestBirthDate_Text(t *testing.T) {
	b := engine.BirthDate{Year: 812, Month: time.March, Day: 7}
	assert.Equal(t, "0812-03-07", b.String())

	data, err := json.Marshal(struct {
		Birth engine.BirthDate `json:"birth"`
	}{b})
	require.NoError(t, err)
	assert.JSONEq(t, `{"birth":"0812-03-07"}`, string(data))

	var decoded engine.BirthDate
	require.NoError(t, decoded.UnmarshalText([]byte("1990-01-01")))
	assert.Equal(t, "1990-01-01", decoded.String())
	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
}

func TestBirthDateOf(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	b := engine.BirthDateOf(time.Date(1990, 1, 1, 1, 0, 0, 0, seoul))

	assert.Equal(t, engine.BirthDate{Year: 1990, Month: time.January, Day: 1}, b)
	assert.False(t, b.IsZero())
	assert.True(t, engine.BirthDate{}.IsZero())
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, seoul), b.In(seoul))
}

func TestDayOffset(t *testing.T) {
	birth := engine.BirthDate{Year: 1990, Month: time.January, Day: 1}

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"Same day", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{"Same day late", time.Date(1990, 1, 1, 23, 59, 0, 0, time.UTC), 0},
		{"One physical period", time.Date(1990, 1, 24, 0, 0, 0, 0, time.UTC), 23},
		{"Across a non leap year", time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 365},
		{"Across a leap year", time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC), 365*3 + 1},
		{"Before birth", time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC), -1},
		{"Before epoch", time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), -10958},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DayOffset(birth, tt.target))
		})
	}
}
