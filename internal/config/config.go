package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Biorhythm/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Biorhythm"
	AppID             = "com.github.tartampluch.go-biorhythm"
	KeyringService    = "com.github.tartampluch.go-biorhythm"
	KeyringAPIKeyUser = "gemini-api-key"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	CacheFileName     = "insights.db"
	ConfigFileName    = "config.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug       = "debug"
	FlagConfig      = "config"
	FlagLang        = "lang"
	FlagDate        = "date"
	FlagNoInsight   = "no-insight"
	FlagOut         = "out"
	FlagBirth       = "birth"
	FlagPort        = "port"
	FlagVCard       = "vcard"
	FlagVCardURL    = "vcard-url"
	FlagVCardUser   = "vcard-user"
	FlagVCardName   = "vcard-name"
	FlagUser        = "user"
	FlagDescDebug   = "Enable debug logging to stderr"
	FlagDescConfig  = "Path to a YAML settings file"
	FlagDescLang    = "Language for day labels and insight text (e.g. en, ko)"
	FlagDescDate    = "Reference day (YYYY-MM-DD); defaults to today"
	FlagDescNoIns   = "Skip the generated insight text"
	FlagDescOut     = "Write output to this file instead of stdout"
	FlagDescBirth   = "Birth date (YYYY-MM-DD) published as the calendar feed"
	FlagDescPort    = "Port for the local HTTP server"
	FlagDescVCard   = "Read the birth date from a local vCard file"
	FlagDescVCardU  = "Read the birth date from a remote vCard (CardDAV/WebDAV URL)"
	FlagDescVCardUs = "HTTP Basic Auth user for --vcard-url (password from keyring)"
	FlagDescVCardN  = "Name of the contact to use when the vCard holds several"
	FlagDescUser    = "Keyring entry to manage (the Gemini key, or a --vcard-user name)"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// CLI Commands
// -----------------------------------------------------------------------------

const (
	CmdRoot        = "go-biorhythm"
	CmdRootShort   = "Biorhythm report, calendar feed and daily insight"
	CmdReport      = "report [birth-date]"
	CmdReportShort = "Print today's biorhythm report as JSON"
	CmdICS         = "ics [birth-date]"
	CmdICSShort    = "Export the 7-day trend as an iCalendar file"
	CmdServe       = "serve"
	CmdServeShort  = "Serve the JSON report and a live calendar feed on localhost"
	CmdKey         = "key"
	CmdKeyShort    = "Manage secrets stored in the OS keyring"
	CmdKeySet      = "set <secret>"
	CmdKeySetShort = "Store a secret (default: the Gemini API key)"
	CmdKeyDel      = "delete"
	CmdKeyDelShort = "Remove a stored secret"
	CmdVersion     = "version"
	CmdVersionSh   = "Print version information"
	JSONIndent     = "  "
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvLang   = "BIORHYTHM_LANG"
	EnvPort   = "BIORHYTHM_PORT"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyLabelToday     = "label_today"
	TKeyWeekdaySun     = "weekday_sun"
	TKeyWeekdayMon     = "weekday_mon"
	TKeyWeekdayTue     = "weekday_tue"
	TKeyWeekdayWed     = "weekday_wed"
	TKeyWeekdayThu     = "weekday_thu"
	TKeyWeekdayFri     = "weekday_fri"
	TKeyWeekdaySat     = "weekday_sat"
	TKeyInsightPrompt  = "insight_prompt"   // Requires Physical, Emotional, Intellectual
	TKeyInsightDefault = "insight_fallback" // Shown when the model is unavailable
	TKeyEvtSummary     = "event_summary"    // Requires Physical, Emotional, Intellectual
	TKeyCalName        = "calendar_name"
)

// WeekdayKeys maps time.Weekday (Sunday = 0) to its translation key.
var WeekdayKeys = [7]string{
	TKeyWeekdaySun,
	TKeyWeekdayMon,
	TKeyWeekdayTue,
	TKeyWeekdayWed,
	TKeyWeekdayThu,
	TKeyWeekdayFri,
	TKeyWeekdaySat,
}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort        = "18080"
	DefaultRefreshMin  = 60
	DefaultLanguage    = "en"
	DefaultModel       = "gemini-3-flash-preview"
	DefaultInsightTime = 20 * time.Second
	DefaultCacheDays   = 30
	UIDSalt            = "go-biorhythm-v1-" // Salt for deterministic UID generation

	// TrendDays is the length of the projected window, reference day included.
	TrendDays = 7

	PeriodPhysical     = 23
	PeriodEmotional    = 28
	PeriodIntellectual = 33

	CyclePhysical     = "physical"
	CycleEmotional    = "emotional"
	CycleIntellectual = "intellectual"

	ScoreMin      = 0
	ScoreMax      = 100
	ScoreBaseline = 50

	// InsightTemperature keeps the generated text varied but on topic.
	InsightTemperature = 0.8
	InsightMIMEType    = "application/json"
	InsightField       = "message"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Biorhythm//Engine//EN"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gobiorhythm"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	ICalCategory       = "Biorhythm"
	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for birth dates (vCard BDAY compatible).
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB, a contact card is tiny
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteCalendar       = "/calendar.ics"
	RouteReport         = "/api/biorhythm"
	AddrSeparator       = ":"
	QueryBirth          = "birth"
	QueryLang           = "lang"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderRequestID       = "X-Request-ID"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrNoBirthday      = "no contact with a usable birth date"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "invalid birth date"
	ErrDateEmpty       = "date is empty"
	ErrDateNoYear      = "birth year is unknown"
	ErrDateUnknown     = "unrecognized date format"
	ErrRefDate         = "invalid reference date"
	ErrBirthRequired   = "birth date is required"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrEncodeResp      = "failed to encode response"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrConfigRead      = "failed to read settings file"
	ErrConfigParse     = "failed to parse settings file"
	ErrConfigInterval  = "refresh interval must be positive"
	ErrConfigTimeout   = "insight timeout must be positive"
	ErrModelInit       = "failed to create Gemini client"
	ErrModelCall       = "Gemini request failed"
	ErrAPIKeyRequired  = "Gemini API key is required"
	ErrEmptyReply      = "model returned an empty reply"
	ErrStoreOpen       = "failed to open insight cache"
	ErrStoreSchema     = "failed to create insight cache schema"
	ErrStoreQuery      = "insight cache query failed"
	ErrKeyringSet      = "failed to store secret in keyring"
	ErrKeyringDelete   = "failed to delete secret from keyring"
	ErrFeedGenerate    = "feed generation failed"
	ErrInsightFallback = "insight unavailable, using fallback"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackTodayLabel = "today"
	FallbackInsight    = "Have an energetic day!"
	FallbackSummary    = "Biorhythm P%d E%d I%d"
	FallbackCalName    = "Biorhythm"
	FallbackName       = "Unknown"

	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgRequest       = "Request served"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgKeyFromRing   = "API key loaded from keyring"
	MsgNoAPIKey      = "No Gemini API key configured, insights use the fallback text"
	MsgKeyStored     = "API key stored in keyring"
	MsgKeyDeleted    = "API key removed from keyring"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid birth date"
	MsgContactFound  = "Birth date imported from vCard"
	MsgReportBuilt   = "Biorhythm report built"
	MsgInsightHit    = "Insight served from cache"
	MsgInsightMiss   = "Requesting insight from model"
	MsgInsightStore  = "Failed to cache insight"
	MsgCachePruned   = "Insight cache pruned"
	MsgWorkerStart   = "Feed worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgFeedUpdated   = "Feed regenerated"
	MsgSettingsLoad  = "Settings loaded"
	MsgSettingsNone  = "No settings file, using defaults"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyRefDay    = "reference_day"
	LogKeyOverall   = "overall"
	LogKeyModel     = "model"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyRows      = "rows"
	LogKeyPathCfg   = "settings_path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompInsight   = "insight"
	CompStore     = "store"
	CompDashboard = "dashboard"
	CompConfig    = "config"
)
