package domain

import "time"

// ReportFileName is the fixed name of the rendered daily report.
const ReportFileName = "daily_lbl_report.pdf"

// Report describes a rendered PDF on disk.
type Report struct {
	Path      string    `json:"path"`
	Date      time.Time `json:"date"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"sha256"`
	Events    int       `json:"events"`
}
