package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

// TLS modes for SMTP_TLS.
const (
	TLSModeStartTLS = "starttls"
	TLSModeImplicit = "tls"
	TLSModeNone     = "none"
)

// DialFunc opens the TCP connection to the relay.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	TLSMode  string
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	cfg       SMTPConfig
	dial      DialFunc
	tlsConfig *tls.Config
	logger    *slog.Logger
}

// NewSMTPSender creates an SMTP transport. dial may be nil for a plain
// net.Dialer.
func NewSMTPSender(cfg SMTPConfig, dial DialFunc, logger *slog.Logger) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSModeStartTLS
	}
	if dial == nil {
		d := &net.Dialer{Timeout: cfg.Timeout}
		dial = d.DialContext
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		cfg:       cfg,
		dial:      dial,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		logger:    logger.With(slog.String("component", "smtp")),
	}
}

// Send implements Sender
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	content, err := msg.Bytes()
	if err != nil {
		return err
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.connect(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(s.cfg.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if s.cfg.TLSMode == TLSModeStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("relay %s does not offer STARTTLS", addr)
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range msg.To {
		to, err := mail.ParseAddress(rcpt)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", rcpt, err)
		}
		if err := client.Rcpt(to.Address); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", to.Address, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("relay rejected message: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.WarnContext(ctx, "SMTP QUIT failed after successful send", slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "Message accepted by relay",
		slog.String("relay", addr),
		slog.Int("recipients", len(msg.To)),
		slog.Int("bytes", len(content)))
	return nil
}

func (s *SMTPSender) connect(ctx context.Context, addr string) (net.Conn, error) {
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	if s.cfg.TLSMode != TLSModeImplicit {
		return conn, nil
	}

	tlsConn := tls.Client(conn, s.tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("TLS handshake with %s failed: %w", addr, err)
	}
	return tlsConn, nil
}
