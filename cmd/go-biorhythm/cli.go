package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/dashboard"
	"github.com/tartampluch/go-biorhythm/internal/engine"
	"github.com/tartampluch/go-biorhythm/internal/insight"
	"github.com/tartampluch/go-biorhythm/internal/locale"
	"github.com/tartampluch/go-biorhythm/internal/store"
)

// modelFactory creates the generative model. Tests replace it.
type modelFactory func(ctx context.Context, apiKey, model string) (insight.Model, error)

func newGeminiModel(ctx context.Context, apiKey, model string) (insight.Model, error) {
	return insight.NewGeminiModel(ctx, apiKey, model)
}

// cli carries the state shared by all commands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	debug      bool
	configPath string

	settings  config.Settings
	logCloser io.Closer
	closers   []io.Closer

	// Injectable dependencies
	clock    engine.Clock
	fetcher  engine.VCardFetcher
	newModel modelFactory
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout:   stdout,
		stderr:   stderr,
		settings: config.DefaultSettings(),
		clock:    engine.RealClock{},
		fetcher:  engine.NewHTTPFetcher(),
		newModel: newGeminiModel,
	}
}

// init sets up logging and loads settings. It runs before every command.
func (c *cli) init() error {
	if c.logCloser == nil {
		c.logCloser = setupLogging(c.debug, c.stderr)
	}
	logStartupInfo()

	path := c.configPath
	if path == "" {
		path = defaultSettingsPath()
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return err
	}
	c.settings = s
	return nil
}

// close releases resources in reverse order of acquisition.
func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
		c.logCloser = nil
	}
}

// lang returns the flag value when set, else the configured language.
func (c *cli) lang(flag string) string {
	if flag != "" {
		return flag
	}
	return c.settings.Language
}

// apiKey reads the Gemini key from the environment, then from the keyring.
func (c *cli) apiKey() string {
	if key := strings.TrimSpace(os.Getenv(config.EnvAPIKey)); key != "" {
		return key
	}
	key, err := keyring.Get(config.KeyringService, config.KeyringAPIKeyUser)
	if err != nil {
		return ""
	}
	slog.Debug(config.MsgKeyFromRing, config.LogKeyComponent, config.CompMain)
	return key
}

// services wires the dashboard. With withInsight false, or when insights are
// disabled or unconfigured, the fallback text is used. The returned cache is
// nil when no cache could be opened.
func (c *cli) services(ctx context.Context, withInsight bool) (*dashboard.Service, *store.SQLiteCache, error) {
	catalog, err := locale.NewCatalog()
	if err != nil {
		return nil, nil, err
	}
	svc := &dashboard.Service{Clock: c.clock, Catalog: catalog}

	if !withInsight || c.settings.Insight.Disabled {
		return svc, nil, nil
	}

	log := slog.With(config.LogKeyComponent, config.CompMain)
	timeout, _ := c.settings.InsightTimeout()
	ins := &insight.Service{Timeout: timeout}

	if key := c.apiKey(); key == "" {
		log.Info(config.MsgNoAPIKey)
	} else if model, err := c.newModel(ctx, key, c.settings.Insight.Model); err != nil {
		log.Warn(config.ErrModelInit, config.LogKeyError, err)
	} else {
		ins.Model = model
		log.Debug(config.MsgInsightMiss, config.LogKeyModel, c.settings.Insight.Model)
	}

	cache := c.openCache()
	if cache != nil {
		ins.Cache = cache
	}
	svc.Insights = ins
	return svc, cache, nil
}

// openCache opens the insight cache; failures only disable caching.
func (c *cli) openCache() *store.SQLiteCache {
	path := c.settings.Insight.CachePath
	if path == "" {
		p, err := appCachePath(config.CacheFileName)
		if err != nil {
			slog.Warn(config.ErrStoreOpen, config.LogKeyComponent, config.CompStore, config.LogKeyError, err)
			return nil
		}
		path = p
	}

	cache, err := store.Open(path)
	if err != nil {
		slog.Warn(config.ErrStoreOpen, config.LogKeyComponent, config.CompStore, config.LogKeyFile, path, config.LogKeyError, err)
		return nil
	}
	c.closers = append(c.closers, cache)
	return cache
}

// birthSource lists the ways a command can receive the birth date.
type birthSource struct {
	vcardPath string
	vcardURL  string
	vcardUser string
	vcardName string
}

// resolveBirth returns the birth date from the positional argument or a vCard.
func (c *cli) resolveBirth(ctx context.Context, args []string, src birthSource) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil

	case src.vcardPath != "":
		f, err := os.Open(src.vcardPath)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return c.birthFromVCard(ctx, f, src.vcardName)

	case src.vcardURL != "":
		pass := ""
		if src.vcardUser != "" {
			p, err := keyring.Get(config.KeyringService, src.vcardUser)
			if err != nil {
				slog.Warn(config.MsgPassFail,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyUser, src.vcardUser,
					config.LogKeyError, err,
				)
			}
			pass = p
		}

		body, err := c.fetcher.Fetch(ctx, src.vcardURL, src.vcardUser, pass)
		if err != nil {
			return "", err
		}
		defer body.Close()
		return c.birthFromVCard(ctx, body, src.vcardName)
	}
	return "", errors.New(config.ErrBirthRequired)
}

func (c *cli) birthFromVCard(ctx context.Context, r io.Reader, name string) (string, error) {
	birth, _, err := engine.BirthDateFromVCard(ctx, r, name)
	if err != nil {
		return "", err
	}
	return birth.String(), nil
}

// pinDate replaces the clock with a fixed one when --date is given.
func (c *cli) pinDate(value string) error {
	if value == "" {
		return nil
	}
	day, err := time.ParseInLocation(config.DateFormatFullDash, value, time.Local)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRefDate, err)
	}
	c.clock = engine.FixedClock{Time: day}
	return nil
}
