// Package config loads the settings of a daily report run.
//
// # Configuration Sources
//
// Configuration comes from environment variables only. A .env file may be
// loaded into the environment by the CLI beforehand; real variables win.
// Variable names carry no prefix so the CI workflow can pass secrets as is:
//
//	SENDER_EMAIL=reports@example.com
//	SENDER_PASSWORD=app-password
//	RECIPIENT_EMAILS=a@example.com,b@example.com
//	LABELED_PLAYERS=607054,596142
//	SEND_EMAIL=false
//
// # Validation
//
// Load fails fast, before any network activity, when a variable is
// malformed (ErrInvalidSetting) or when SEND_EMAIL=true and the sender,
// credential or recipient list is absent (ErrMissingSetting).
//
// # Path Management
//
// Paths resolves DATA_DIR, OUTPUT_DIR, LOGS_DIR and LOGO_PATH against the
// working directory and names every file a run reads or writes:
//
//	paths, err := config.NewPaths(cfg.PathsConfig)
//	pdf := paths.ReportPath // <OUTPUT_DIR>/daily_lbl_report.pdf
package config
