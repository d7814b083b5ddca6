// Package delivery emails the rendered report. SMTP is the default
// transport; SES is available for hosts without a relay. With delivery
// disabled nothing is dialed.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lblreport/internal/config"
	"lblreport/pkg/contracts/domain"
)

// DefaultBody is the text part of every report email.
const DefaultBody = "Please find attached the Daily Longball Labs Report. Reply to this message with any questions or concerns."

// Sender transmits one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher turns a rendered report into an email.
type Dispatcher struct {
	enabled    bool
	sender     Sender
	from       string
	recipients []string
	now        func() time.Time
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher. When enabled is false the sender is
// never used and may be nil.
func NewDispatcher(enabled bool, sender Sender, from string, recipients []string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		enabled:    enabled,
		sender:     sender,
		from:       from,
		recipients: recipients,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "delivery")),
	}
}

// WithClock replaces the clock used for the subject and Date header.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Enabled reports whether Deliver sends anything.
func (d *Dispatcher) Enabled() bool {
	return d.enabled
}

// Subject returns the subject line for a send at t.
func Subject(t time.Time) string {
	return fmt.Sprintf("%s - %s", config.ReportTitle, t.Format("2006-01-02"))
}

// Deliver emails report to every recipient. It returns false without error
// when delivery is disabled; the PDF stays on disk either way.
func (d *Dispatcher) Deliver(ctx context.Context, report *domain.Report) (bool, error) {
	if !d.enabled {
		d.logger.InfoContext(ctx, "Email sending skipped (SEND_EMAIL=false)", slog.String("report", report.Path))
		return false, nil
	}
	if d.sender == nil {
		return false, fmt.Errorf("no mail transport configured")
	}

	data, err := os.ReadFile(report.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read report: %w", err)
	}

	now := d.now()
	msg := Message{
		From:    d.from,
		To:      d.recipients,
		Subject: Subject(now),
		Body:    DefaultBody,
		Date:    now,
		Attachments: []Attachment{{
			Filename:    filepath.Base(report.Path),
			ContentType: "application/pdf",
			Data:        data,
		}},
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return false, err
	}

	d.logger.InfoContext(ctx, "Report emailed",
		slog.Int("recipients", len(d.recipients)),
		slog.String("subject", msg.Subject))
	return true, nil
}
