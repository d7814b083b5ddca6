package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"SENDER_EMAIL", "SENDER_PASSWORD", "SMTP_SERVER", "SMTP_PORT", "SMTP_TLS",
	"RECIPIENT_EMAILS", "SEND_EMAIL", "DELIVERY_TRANSPORT",
	"LABELED_PLAYERS", "TRACKED_TEAMS", "RULES_FILE",
	"URL_FANGRAPHS", "URL_STATCAST", "URL_MLB_API", "WEIGHTS_RENDERER",
	"HTTP_TIMEOUT", "MLB_API_RPS", "DATA_DATE",
	"DATA_DIR", "OUTPUT_DIR", "LOGS_DIR", "LOGO_PATH", "DATA_RETENTION_DAYS",
	"LOG_LEVEL", "LOG_OUTPUT", "LOG_FILE",
	"ENVIRONMENT", "OTEL_TRACES_EXPORTER", "PUSHGATEWAY_URL",
}

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     error
		errContains string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with sending disabled",
			env:  map[string]string{"SEND_EMAIL": "false"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "smtp.gmail.com", cfg.SMTPServer)
				assert.Equal(t, 587, cfg.SMTPPort)
				assert.Equal(t, "starttls", cfg.SMTPTLS)
				assert.Equal(t, "smtp", cfg.Transport)
				assert.False(t, cfg.SendEmail)
				assert.Equal(t, "https://www.fangraphs.com/guts.aspx?type=cn", cfg.FangraphsURL)
				assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
				assert.Len(t, cfg.LabeledPlayers, 13)
				assert.Contains(t, cfg.LabeledPlayers, int64(596142))
				assert.Equal(t, TeamList{"SD"}, cfg.TrackedTeams)
				assert.Equal(t, "data", cfg.DataDir)
				assert.Equal(t, ".", cfg.OutputDir)
				assert.Equal(t, "longball-labs.png", cfg.LogoPath)
				assert.Equal(t, 14, cfg.RetentionDays)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, filepath.Join("logs", DefaultLogFile), cfg.Logging.FilePath)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "full delivery configuration",
			env: map[string]string{
				"SENDER_EMAIL":     "bot@example.com",
				"SENDER_PASSWORD":  "secret",
				"RECIPIENT_EMAILS": " a@example.com, b@example.com ,,",
				"SMTP_SERVER":      "smtp.example.com",
				"SMTP_PORT":        "465",
				"SMTP_TLS":         "tls",
				"LABELED_PLAYERS":  " 596142 , 607054",
				"TRACKED_TEAMS":    "sd, lad",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.SendEmail)
				assert.Equal(t, EmailList{"a@example.com", "b@example.com"}, cfg.Recipients)
				assert.Equal(t, 465, cfg.SMTPPort)
				assert.Equal(t, PlayerIDs{596142, 607054}, cfg.LabeledPlayers)
				assert.Equal(t, TeamList{"SD", "LAD"}, cfg.TrackedTeams)
			},
		},
		{
			name:        "missing recipients while sending",
			env:         map[string]string{"SENDER_EMAIL": "bot@example.com", "SENDER_PASSWORD": "secret"},
			wantErr:     ErrMissingSetting,
			errContains: "RECIPIENT_EMAILS",
		},
		{
			name:        "missing credential while sending over smtp",
			env:         map[string]string{"SENDER_EMAIL": "bot@example.com", "RECIPIENT_EMAILS": "a@example.com"},
			wantErr:     ErrMissingSetting,
			errContains: "SENDER_PASSWORD",
		},
		{
			name: "ses transport needs no password",
			env: map[string]string{
				"SENDER_EMAIL":       "bot@example.com",
				"RECIPIENT_EMAILS":   "a@example.com",
				"DELIVERY_TRANSPORT": "ses",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ses", cfg.Transport)
			},
		},
		{
			name: "cleartext credentials to a remote relay",
			env: map[string]string{
				"SENDER_EMAIL":     "bot@example.com",
				"SENDER_PASSWORD":  "secret",
				"RECIPIENT_EMAILS": "a@example.com",
				"SMTP_SERVER":      "smtp.example.com",
				"SMTP_TLS":         "none",
			},
			wantErr:     ErrInvalidSetting,
			errContains: "SMTP_TLS=none",
		},
		{
			name: "cleartext credentials to a local relay",
			env: map[string]string{
				"SENDER_EMAIL":     "bot@example.com",
				"SENDER_PASSWORD":  "secret",
				"RECIPIENT_EMAILS": "a@example.com",
				"SMTP_SERVER":      "127.0.0.1",
				"SMTP_PORT":        "2525",
				"SMTP_TLS":         "none",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "none", cfg.SMTPTLS)
			},
		},
		{
			name: "cleartext remote relay while sending is off",
			env: map[string]string{
				"SENDER_EMAIL":     "bot@example.com",
				"SENDER_PASSWORD":  "secret",
				"RECIPIENT_EMAILS": "a@example.com",
				"SMTP_SERVER":      "relay.internal",
				"SMTP_TLS":         "none",
				"SEND_EMAIL":       "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.SendEmail)
			},
		},
		{
			name:        "non-numeric player id",
			env:         map[string]string{"SEND_EMAIL": "false", "LABELED_PLAYERS": "596142,abc"},
			wantErr:     ErrInvalidSetting,
			errContains: "abc",
		},
		{
			name:        "bad recipient address",
			env:         map[string]string{"SEND_EMAIL": "false", "RECIPIENT_EMAILS": "not-an-address"},
			wantErr:     ErrInvalidSetting,
			errContains: "RECIPIENT_EMAILS",
		},
		{
			name:        "port out of range",
			env:         map[string]string{"SEND_EMAIL": "false", "SMTP_PORT": "70000"},
			wantErr:     ErrInvalidSetting,
			errContains: "SMTP_PORT",
		},
		{
			name:        "malformed data date",
			env:         map[string]string{"SEND_EMAIL": "false", "DATA_DATE": "06/01/2024"},
			wantErr:     ErrInvalidSetting,
			errContains: "DATA_DATE",
		},
		{
			name:        "unknown renderer",
			env:         map[string]string{"SEND_EMAIL": "false", "WEIGHTS_RENDERER": "lynx"},
			wantErr:     ErrInvalidSetting,
			errContains: "WEIGHTS_RENDERER",
		},
		{
			name:        "nobody tracked",
			env:         map[string]string{"SEND_EMAIL": "false", "LABELED_PLAYERS": " ", "TRACKED_TEAMS": ""},
			wantErr:     ErrMissingSetting,
			errContains: "LABELED_PLAYERS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setEnv(t, tt.env)

			cfg, err := Load()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestReportDate(t *testing.T) {
	now := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)

	t.Run("defaults to yesterday", func(t *testing.T) {
		cfg := &Config{}
		d, err := cfg.ReportDate(now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("honours DATA_DATE", func(t *testing.T) {
		cfg := &Config{SourcesConfig: SourcesConfig{DataDate: "2024-05-15"}}
		d, err := cfg.ReportDate(now)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-15", d.Format("2006-01-02"))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		cfg := &Config{SourcesConfig: SourcesConfig{DataDate: "yesterday"}}
		_, err := cfg.ReportDate(now)
		assert.ErrorIs(t, err, ErrInvalidSetting)
	})
}

func TestPlayerIDsDecode(t *testing.T) {
	var ids PlayerIDs
	require.NoError(t, ids.Decode("596142, 607054 ,,664056"))
	assert.Equal(t, PlayerIDs{596142, 607054, 664056}, ids)

	assert.Error(t, ids.Decode("596142,-3"))
	assert.Error(t, ids.Decode("1.5"))

	require.NoError(t, ids.Decode(""))
	assert.Empty(t, ids)
}

func TestLoadLogging(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{"LOG_LEVEL": "debug", "LOG_OUTPUT": "both"})

	cfg := LoadLogging()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "both", cfg.Output)
	assert.Equal(t, filepath.Join("logs", DefaultLogFile), cfg.FilePath)

	t.Setenv("LOGS_DIR", "/var/log/lbl")
	assert.Equal(t, filepath.Join("/var/log/lbl", DefaultLogFile), LoadLogging().FilePath)
}

func TestLoadSources(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"URL_FANGRAPHS": "http://127.0.0.1:8080/guts",
		"DATA_DATE":     "2023-09-30",
	})

	cfg, err := LoadSources()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/guts", cfg.FangraphsURL)
	assert.Equal(t, "http", cfg.WeightsRenderer)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)

	t.Setenv("WEIGHTS_RENDERER", "lynx")
	_, err = LoadSources()
	assert.ErrorIs(t, err, ErrInvalidSetting)
}
