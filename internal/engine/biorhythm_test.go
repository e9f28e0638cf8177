package engine_test

import (
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tartampluch/go-biorhythm/internal/engine"
)

var periods = []int{23, 28, 33}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScore_Range(t *testing.T) {
	for _, p := range periods {
		for d := -1000; d <= 1000; d++ {
			s := engine.Score(d, p)
			if s < 0 || s > 100 {
				t.Fatalf("score(%d, %d) = %d out of [0,100]", d, p, s)
			}
		}
	}
}

func TestScore_Periodicity(t *testing.T) {
	for _, p := range periods {
		for d := -500; d <= 500; d++ {
			require.Equal(t, engine.Score(d, p), engine.Score(d+p, p), "period %d, offset %d", p, d)
		}
	}
}

func TestScore_ReferencePoints(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		period int
		want   int
	}{
		{"Baseline physical", 0, 23, 50},
		{"Baseline emotional", 0, 28, 50},
		{"Baseline intellectual", 0, 33, 50},
		{"Peak emotional (exact quarter)", 7, 28, 100},
		{"Trough emotional (exact three quarters)", 21, 28, 0},
		{"Half period emotional", 14, 28, 50},
		{"Near peak physical", 6, 23, 100},
		{"Near peak intellectual", 8, 33, 100},
		{"Negative offset mirrors", -7, 28, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Score(tt.offset, tt.period))
		})
	}
}

func TestComputeScoreTriple_UsesEachPeriod(t *testing.T) {
	got := engine.ComputeScoreTriple(23)

	assert.Equal(t, engine.ScoreTriple{Physical: 50, Emotional: 5, Intellectual: 3}, got)
}

func TestCycles(t *testing.T) {
	c := engine.Cycles()
	assert.Equal(t, "physical", c[0].Name)
	assert.Equal(t, 23, c[0].Period)
	assert.Equal(t, 28, c[1].Period)
	assert.Equal(t, 33, c[2].Period)

	// The returned array is a copy.
	c[0].Period = 1
	assert.Equal(t, 23, engine.Cycles()[0].Period)
}

func TestOverall(t *testing.T) {
	assert.Equal(t, 50, engine.Overall(engine.ScoreTriple{Physical: 50, Emotional: 50, Intellectual: 50}))
	assert.Equal(t, 19, engine.Overall(engine.ScoreTriple{Physical: 50, Emotional: 5, Intellectual: 3}))
	assert.Equal(t, 67, engine.Overall(engine.ScoreTriple{Physical: 100, Emotional: 100, Intellectual: 0}), "66.67 rounds up")
	assert.Equal(t, 33, engine.Overall(engine.ScoreTriple{Physical: 100, Emotional: 0, Intellectual: 0}), "33.33 rounds down")
}

func TestComputeReport_BirthDay(t *testing.T) {
	report, err := engine.ComputeReport("1990-01-01", day(1990, 1, 1), nil)
	require.NoError(t, err)

	assert.Equal(t, 50, report.Physical)
	assert.Equal(t, 50, report.Emotional)
	assert.Equal(t, 50, report.Intellectual)
	assert.Equal(t, 50, report.Overall)
	require.Len(t, report.WeeklyTrend, 7)
	assert.Equal(t, "today", report.WeeklyTrend[0].Day)
}

func TestComputeReport_OnePhysicalPeriod(t *testing.T) {
	report, err := engine.ComputeReport("1990-01-01", day(1990, 1, 24), nil)
	require.NoError(t, err)

	assert.Equal(t, 50, report.Physical, "back to baseline after 23 days")
	assert.NotEqual(t, 50, report.Emotional)
	assert.NotEqual(t, 50, report.Intellectual)
	assert.Equal(t, engine.Overall(report.ScoreTriple), report.Overall)
}

func TestComputeReport_TrendShape(t *testing.T) {
	// 1990-01-01 was a Monday.
	report, err := engine.ComputeReport("1985-06-15", day(1990, 1, 1), nil)
	require.NoError(t, err)
	require.Len(t, report.WeeklyTrend, 7)

	wantLabels := []string{"today", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	birth := engine.BirthDate{Year: 1985, Month: time.June, Day: 15}

	for i, p := range report.WeeklyTrend {
		wantDate := day(1990, 1, 1+i)
		assert.Equal(t, wantDate, p.Date, "point %d", i)
		assert.Equal(t, wantLabels[i], p.Day, "point %d", i)
		assert.Equal(t, engine.ComputeScoreTriple(engine.DayOffset(birth, wantDate)), p.ScoreTriple)
	}

	assert.Equal(t, report.WeeklyTrend[0].ScoreTriple, report.ScoreTriple)
	assert.Equal(t, engine.Overall(report.WeeklyTrend[0].ScoreTriple), report.Overall)
}

func TestComputeReport_InvalidBirthDate(t *testing.T) {
	for _, in := range []string{"not-a-date", "", "1990-02-30", "1990-13-01", "--01-02"} {
		t.Run(in, func(t *testing.T) {
			report, err := engine.ComputeReport(in, day(2024, 1, 1), nil)

			var invalid *engine.InvalidDateError
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, engine.ErrInvalidDate)
			assert.Equal(t, in, invalid.Value)
			assert.Empty(t, report.WeeklyTrend, "no partial report")
			assert.Equal(t, engine.Report{}, report)
		})
	}
}

func TestProject_NormalizesTimeOfDay(t *testing.T) {
	birth := engine.BirthDate{Year: 1990, Month: time.January, Day: 1}
	morning := engine.Project(birth, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), nil)
	evening := engine.Project(birth, time.Date(2024, 5, 10, 23, 59, 59, 999, time.UTC), nil)

	if diff := cmp.Diff(morning, evening); diff != "" {
		t.Errorf("time of day changed the report (-morning +evening):\n%s", diff)
	}
}

func TestProject_Deterministic(t *testing.T) {
	ref := day(2031, 7, 4)
	a, err := engine.ComputeReport("2001-09-11", ref, nil)
	require.NoError(t, err)
	b, err := engine.ComputeReport("2001-09-11", ref, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical inputs diverged:\n%s", diff)
	}
}

func TestProject_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks in New York jump forward on 2024-03-10.
	ref := time.Date(2024, 3, 8, 0, 0, 0, 0, ny)
	birth := engine.BirthDate{Year: 1990, Month: time.January, Day: 1}
	report := engine.Project(birth, ref, nil)

	base := engine.DayOffset(birth, ref)
	for i, p := range report.WeeklyTrend {
		assert.Equal(t, 0, p.Date.Hour(), "point %d stays at midnight", i)
		assert.Equal(t, base+i, engine.DayOffset(birth, p.Date), "point %d", i)
	}
}

func TestProject_ZoneIndependentOffsets(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	birth := engine.BirthDate{Year: 1990, Month: time.January, Day: 1}

	utc := engine.Project(birth, day(2024, 1, 1), nil)
	kst := engine.Project(birth, time.Date(2024, 1, 1, 8, 0, 0, 0, seoul), nil)

	assert.Equal(t, utc.ScoreTriple, kst.ScoreTriple)
	assert.Equal(t, utc.Overall, kst.Overall)
}

func TestProject_BeforeBirth(t *testing.T) {
	birth := engine.BirthDate{Year: 2000, Month: time.January, Day: 1}
	report := engine.Project(birth, day(1999, 12, 25), nil)

	assert.Equal(t, -7, engine.DayOffset(birth, day(1999, 12, 25)))
	for _, p := range report.WeeklyTrend {
		for _, s := range []int{p.Physical, p.Emotional, p.Intellectual} {
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

type upperLabels struct{}

func (upperLabels) TodayLabel() string            { return "NOW" }
func (upperLabels) DayLabel(d time.Time) string { return d.Format("Mon 02") }

func TestProject_CustomLabeler(t *testing.T) {
	report := engine.Project(engine.BirthDate{Year: 1990, Month: time.January, Day: 1}, day(1990, 1, 1), upperLabels{})

	assert.Equal(t, "NOW", report.WeeklyTrend[0].Day)
	assert.Equal(t, "Tue 02", report.WeeklyTrend[1].Day)
	assert.Equal(t, "Sun 07", report.WeeklyTrend[6].Day)
}

func TestProject_ConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	ref := day(2024, 2, 29)
	want, err := engine.ComputeReport("1977-05-25", ref, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]engine.Report, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = engine.ComputeReport("1977-05-25", ref, nil)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("caller %d diverged:\n%s", i, diff)
		}
	}
}

func TestToday_UsesClockDate(t *testing.T) {
	clock := MockClock{CurrentTime: time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)}
	assert.Equal(t, day(2025, 6, 15), engine.Today(clock))
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}
