package config

import "lblreport/pkg/contracts"

// Application constants
const (
	AppName    = "lbl-report"
	AppVersion = contracts.Version

	// ReportTitle is printed on the cover and used in the mail subject.
	ReportTitle = "Daily Longball Labs Report"

	// DefaultLogFile is used when LOG_OUTPUT writes to a file and LOG_FILE is unset.
	DefaultLogFile = "lbl-report.log"
)
