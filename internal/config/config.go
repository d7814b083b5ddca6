package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var (
	// ErrMissingSetting is wrapped by every error about an absent mandatory variable.
	ErrMissingSetting = errors.New("missing required setting")
	// ErrInvalidSetting is wrapped by every error about a malformed variable.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Config represents the complete configuration of one daily run. The
// embedded groups keep the flat, unprefixed variable names.
type Config struct {
	MailConfig
	TrackingConfig
	SourcesConfig
	PathsConfig
	Logging   LoggingConfig   `ignored:"true"`
	Telemetry TelemetryConfig `ignored:"true"`
}

// MailConfig contains the delivery settings
type MailConfig struct {
	SenderEmail    string    `envconfig:"SENDER_EMAIL" validate:"omitempty,email"`
	SenderPassword string    `envconfig:"SENDER_PASSWORD"`
	SMTPServer     string    `envconfig:"SMTP_SERVER" default:"smtp.gmail.com" validate:"required,hostname|ip"`
	SMTPPort       int       `envconfig:"SMTP_PORT" default:"587" validate:"min=1,max=65535"`
	SMTPTLS        string    `envconfig:"SMTP_TLS" default:"starttls" validate:"oneof=starttls tls none"`
	Recipients     EmailList `envconfig:"RECIPIENT_EMAILS" validate:"dive,email"`
	SendEmail      bool      `envconfig:"SEND_EMAIL" default:"true"`
	Transport      string    `envconfig:"DELIVERY_TRANSPORT" default:"smtp" validate:"oneof=smtp ses"`
}

// TrackingConfig names the clients of interest
type TrackingConfig struct {
	LabeledPlayers PlayerIDs `envconfig:"LABELED_PLAYERS" default:"607054,621439,596142,669261,571745,543877,456781,593871,596115,664034,680777,621043,664056"`
	TrackedTeams   TeamList  `envconfig:"TRACKED_TEAMS" default:"SD"`
	RulesFile      string    `envconfig:"RULES_FILE"`
}

// SourcesConfig contains the upstream data providers
type SourcesConfig struct {
	FangraphsURL    string        `envconfig:"URL_FANGRAPHS" default:"https://www.fangraphs.com/guts.aspx?type=cn" validate:"required,url"`
	StatcastURL     string        `envconfig:"URL_STATCAST" default:"https://baseballsavant.mlb.com/statcast_search/csv" validate:"required,url"`
	MLBAPIURL       string        `envconfig:"URL_MLB_API" default:"https://statsapi.mlb.com/api/v1" validate:"required,url"`
	WeightsRenderer string        `envconfig:"WEIGHTS_RENDERER" default:"http" validate:"oneof=http chrome"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s" validate:"gt=0"`
	MLBAPIRate      float64       `envconfig:"MLB_API_RPS" default:"5" validate:"gt=0"`
	DataDate        string        `envconfig:"DATA_DATE" validate:"omitempty,datetime=2006-01-02"`
}

// PathsConfig contains file system locations
type PathsConfig struct {
	DataDir   string `envconfig:"DATA_DIR" default:"data" validate:"required"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"." validate:"required"`
	LogsDir   string `envconfig:"LOGS_DIR" default:"logs" validate:"required"`
	LogoPath  string `envconfig:"LOGO_PATH" default:"longball-labs.png"`

	// RetentionDays bounds how long dated working files stay in DATA_DIR; 0 keeps them forever.
	RetentionDays int `envconfig:"DATA_RETENTION_DAYS" default:"14" validate:"min=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `envconfig:"LOG_OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `envconfig:"LOG_FILE"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Environment    string `envconfig:"ENVIRONMENT" default:"production"`
	TraceExporter  string `envconfig:"OTEL_TRACES_EXPORTER" default:"none" validate:"oneof=none stdout"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
}

// Load reads the configuration from the environment and validates it.
// Nothing is fetched from the network before Load succeeds.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if err := envconfig.Process("", &cfg.Logging); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(cfg.LogsDir, DefaultLogFile)
	}
	if err := envconfig.Process("", &cfg.Telemetry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadLogging reads only the logging settings. The CLI uses it to get a
// logger up before the full configuration is validated.
func LoadLogging() LoggingConfig {
	var cfg LoggingConfig
	if err := envconfig.Process("", &cfg); err != nil {
		cfg = LoggingConfig{Level: "info", Output: "console"}
	}
	if cfg.FilePath == "" {
		dir := os.Getenv("LOGS_DIR")
		if dir == "" {
			dir = "logs"
		}
		cfg.FilePath = filepath.Join(dir, DefaultLogFile)
	}
	return cfg
}

// LoadSources reads only the upstream provider settings, for commands
// that fetch without running the whole job.
func LoadSources() (*SourcesConfig, error) {
	var cfg SourcesConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats and the settings that become mandatory
// when delivery is enabled.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", envName(fe), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSetting, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}

	if len(c.LabeledPlayers) == 0 && len(c.TrackedTeams) == 0 {
		return fmt.Errorf("%w: LABELED_PLAYERS or TRACKED_TEAMS", ErrMissingSetting)
	}

	if !c.SendEmail {
		return nil
	}

	var missing []string
	if c.SenderEmail == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if c.Transport == "smtp" && c.SenderPassword == "" {
		missing = append(missing, "SENDER_PASSWORD")
	}
	if len(c.Recipients) == 0 {
		missing = append(missing, "RECIPIENT_EMAILS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (required while SEND_EMAIL=true)", ErrMissingSetting, strings.Join(missing, ", "))
	}

	// net/smtp refuses PLAIN auth over a cleartext connection to anything
	// but a loopback relay.
	if c.Transport == "smtp" && c.SMTPTLS == "none" && c.SenderPassword != "" && !loopbackHost(c.SMTPServer) {
		return fmt.Errorf("%w: SMTP_TLS=none with SENDER_PASSWORD requires a localhost SMTP_SERVER, got %q",
			ErrInvalidSetting, c.SMTPServer)
	}

	return nil
}

func loopbackHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// ReportDate returns the game date the run reports on: DATA_DATE when set,
// otherwise the day before now.
func (c *Config) ReportDate(now time.Time) (time.Time, error) {
	if c.DataDate != "" {
		d, err := time.Parse("2006-01-02", c.DataDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: DATA_DATE %q", ErrInvalidSetting, c.DataDate)
		}
		return d, nil
	}
	y := now.AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
}

// envName maps a validator field error back to the variable name.
func envName(fe validator.FieldError) string {
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if name, ok := fieldEnv[field]; ok {
		return name
	}
	return fe.Namespace()
}

var fieldEnv = map[string]string{
	"SenderEmail":     "SENDER_EMAIL",
	"SMTPServer":      "SMTP_SERVER",
	"SMTPPort":        "SMTP_PORT",
	"SMTPTLS":         "SMTP_TLS",
	"Recipients":      "RECIPIENT_EMAILS",
	"Transport":       "DELIVERY_TRANSPORT",
	"FangraphsURL":    "URL_FANGRAPHS",
	"StatcastURL":     "URL_STATCAST",
	"MLBAPIURL":       "URL_MLB_API",
	"WeightsRenderer": "WEIGHTS_RENDERER",
	"HTTPTimeout":     "HTTP_TIMEOUT",
	"MLBAPIRate":      "MLB_API_RPS",
	"DataDate":        "DATA_DATE",
	"DataDir":         "DATA_DIR",
	"OutputDir":       "OUTPUT_DIR",
	"LogsDir":         "LOGS_DIR",
	"RetentionDays":   "DATA_RETENTION_DAYS",
	"Level":           "LOG_LEVEL",
	"Output":          "LOG_OUTPUT",
	"TraceExporter":   "OTEL_TRACES_EXPORTER",
	"PushgatewayURL":  "PUSHGATEWAY_URL",
}

// PlayerIDs is a comma-separated list of MLBAM player IDs.
type PlayerIDs []int64

// Decode implements envconfig.Decoder
func (p *PlayerIDs) Decode(value string) error {
	ids := PlayerIDs{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("player ID %q is not a positive integer", part)
		}
		ids = append(ids, id)
	}
	*p = ids
	return nil
}

// EmailList is a comma-separated list of addresses.
type EmailList []string

// Decode implements envconfig.Decoder
func (e *EmailList) Decode(value string) error {
	*e = splitList(value, false)
	return nil
}

// TeamList is a comma-separated list of team abbreviations.
type TeamList []string

// Decode implements envconfig.Decoder
func (t *TeamList) Decode(value string) error {
	*t = splitList(value, true)
	return nil
}

func splitList(value string, upper bool) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}
