package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the user-tunable runtime configuration.
// Secrets (API key, vCard password) are deliberately absent: they come from
// the environment or the OS keyring.
type Settings struct {
	Language string          `yaml:"language"`
	Server   ServerSettings  `yaml:"server"`
	Insight  InsightSettings `yaml:"insight"`
}

// ServerSettings configures the local HTTP server and its feed worker.
type ServerSettings struct {
	Port            string `yaml:"port"`
	RefreshInterval string `yaml:"refresh_interval"` // Go duration, e.g. "60m"
}

// InsightSettings configures the generative model and its cache.
type InsightSettings struct {
	Model     string `yaml:"model"`
	Timeout   string `yaml:"timeout"`    // Go duration, e.g. "20s"
	CachePath string `yaml:"cache_path"` // empty selects the user cache dir
	CacheDays int    `yaml:"cache_days"`
	Disabled  bool   `yaml:"disabled"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Server: ServerSettings{
			Port:            DefaultPort,
			RefreshInterval: (DefaultRefreshMin * time.Minute).String(),
		},
		Insight: InsightSettings{
			Model:     DefaultModel,
			Timeout:   DefaultInsightTime.String(),
			CacheDays: DefaultCacheDays,
		},
	}
}

// LoadSettings reads a YAML settings file on top of the defaults.
// A missing file is not an error. Environment overrides are applied last.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	log := slog.With(LogKeyComponent, CompConfig, LogKeyPathCfg, path)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug(MsgSettingsNone)
		case err != nil:
			return s, fmt.Errorf("%s: %w", ErrConfigRead, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("%s: %w", ErrConfigParse, err)
			}
			log.Debug(MsgSettingsLoad)
		}
	}

	s.applyEnv()
	s.fillDefaults()
	return s, s.Validate()
}

// applyEnv lets the environment override file values.
func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLang)); v != "" {
		s.Language = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		s.Server.Port = v
	}
}

// fillDefaults restores zero values that a partial YAML file left empty.
func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.Language == "" {
		s.Language = d.Language
	}
	if s.Server.Port == "" {
		s.Server.Port = d.Server.Port
	}
	if s.Server.RefreshInterval == "" {
		s.Server.RefreshInterval = d.Server.RefreshInterval
	}
	if s.Insight.Model == "" {
		s.Insight.Model = d.Insight.Model
	}
	if s.Insight.Timeout == "" {
		s.Insight.Timeout = d.Insight.Timeout
	}
	if s.Insight.CacheDays <= 0 {
		s.Insight.CacheDays = d.Insight.CacheDays
	}
}

// Validate checks ports and durations.
func (s Settings) Validate() error {
	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if d, err := s.RefreshInterval(); err != nil || d <= 0 {
		return errors.New(ErrConfigInterval)
	}
	if d, err := s.InsightTimeout(); err != nil || d <= 0 {
		return errors.New(ErrConfigTimeout)
	}
	return nil
}

// RefreshInterval parses Server.RefreshInterval.
func (s Settings) RefreshInterval() (time.Duration, error) {
	return time.ParseDuration(s.Server.RefreshInterval)
}

// InsightTimeout parses Insight.Timeout.
func (s Settings) InsightTimeout() (time.Duration, error) {
	return time.ParseDuration(s.Insight.Timeout)
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
