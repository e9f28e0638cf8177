package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/dashboard"
	"github.com/tartampluch/go-biorhythm/internal/engine"
)

// cacheItem stores a rendered body and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers, empty when unknown
}

func newCacheItem(data []byte, lastModified string) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: lastModified,
	}
}

// Dashboard builds the report served on the JSON endpoint.
// *dashboard.Service implements it.
type Dashboard interface {
	Build(ctx context.Context, birth string, langs ...string) (dashboard.View, error)
}

// CalendarServer serves the published iCalendar feed and, when a Dashboard
// is set, the JSON report endpoint.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads.
	// The feed is read often by calendar clients and replaced once per refresh.
	cache     atomic.Pointer[cacheItem]
	Port      string
	Dashboard Dashboard
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string, dash Dashboard) *CalendarServer {
	return &CalendarServer{
		Port:      port,
		Dashboard: dash,
	}
}

// Handler returns the routed handler, wrapped with request IDs and access logging.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	if s.Dashboard != nil {
		mux.HandleFunc(config.RouteReport, s.handleReportRequest)
	}
	return withRequestID(mux)
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed.
func (s *CalendarServer) Update(data []byte) {
	item := newCacheItem(data, time.Now().UTC().Format(http.TimeFormat))

	// Any concurrent reader sees either the old or the new complete item.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	serveCached(w, r, item, config.MimeTextCalendar)
}

// handleReportRequest serves the biorhythm view for ?birth= as JSON.
func (s *CalendarServer) handleReportRequest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r) {
		return
	}

	query := r.URL.Query()
	birth := query.Get(config.QueryBirth)
	if birth == "" {
		writeError(w, http.StatusBadRequest, errors.New(config.ErrBirthRequired))
		return
	}

	view, err := s.Dashboard.Build(r.Context(), birth, query.Get(config.QueryLang), r.Header.Get(config.HeaderAcceptLanguage))
	if err != nil {
		var invalid *engine.InvalidDateError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		slog.Error(config.HTTPMsgInternalErr,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, errors.New(config.HTTPMsgInternalErr))
		return
	}

	body, err := json.Marshal(view)
	if err != nil {
		slog.Error(config.ErrEncodeResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, errors.New(config.HTTPMsgInternalErr))
		return
	}

	serveCached(w, r, newCacheItem(body, ""), config.MimeJSON)
}

// allowMethod rejects everything but GET and HEAD.
func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// serveCached writes item with caching headers, answering 304 when the client copy is current.
func serveCached(w http.ResponseWriter, r *http.Request, item *cacheItem, contentType string) {
	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	if item.lastModified != "" {
		w.Header().Set(config.HeaderLastModified, item.lastModified)
	}

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" && item.lastModified != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				// Content not newer than the client's copy.
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: err.Error()}); encErr != nil {
		slog.Error(config.ErrEncodeResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, encErr,
		)
	}
}
