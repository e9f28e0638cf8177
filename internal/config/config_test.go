package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-biorhythm/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"DefaultModel", config.DefaultModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestCyclePeriods pins the three biorhythm periods.
func TestCyclePeriods(t *testing.T) {
	assert.Equal(t, 23, config.PeriodPhysical)
	assert.Equal(t, 28, config.PeriodEmotional)
	assert.Equal(t, 33, config.PeriodIntellectual)
	assert.Equal(t, 7, config.TrendDays)
}

func TestWeekdayKeys_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range config.WeekdayKeys {
		assert.NotEmpty(t, k)
		assert.False(t, seen[k], "duplicate weekday key %s", k)
		seen[k] = true
	}
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Biorhythm/"), "UserAgent must start with AppName/")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second)
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute)
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, config.MaxHTTPResponseSize, 0)
	assert.Less(t, config.DefaultInsightTime, config.HTTPTimeout, "insight calls must not outlive the HTTP write timeout")
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.EnvLang, "")
	t.Setenv(config.EnvPort, "")

	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)

	interval, err := s.RefreshInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, interval)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
language: ko
server:
  port: "19090"
  refresh_interval: 15m
insight:
  model: gemini-custom
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(config.EnvLang, "")
	t.Setenv(config.EnvPort, "18181")

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "ko", s.Language)
	assert.Equal(t, "18181", s.Server.Port, "environment overrides the file")
	assert.Equal(t, "gemini-custom", s.Insight.Model)
	assert.Equal(t, config.DefaultCacheDays, s.Insight.CacheDays, "omitted values fall back to defaults")

	timeout, err := s.InsightTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv(config.EnvLang, "")
	t.Setenv(config.EnvPort, "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"Malformed YAML", "server: [", config.ErrConfigParse},
		{"Port out of range", "server:\n  port: \"70000\"\n", config.ErrPortRange},
		{"Port not a number", "server:\n  port: abc\n", config.ErrPortNumber},
		{"Negative interval", "server:\n  refresh_interval: -1m\n", config.ErrConfigInterval},
		{"Bad timeout", "insight:\n  timeout: soon\n", config.ErrConfigTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := config.LoadSettings(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, config.ValidatePort("18080"))
	assert.EqualError(t, config.ValidatePort(""), config.ErrPortRequired)
	assert.EqualError(t, config.ValidatePort("0"), config.ErrPortRange)
}
