package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lblreport/internal/shared/testutil"
	"lblreport/pkg/contracts/domain"
)

var sendTime = time.Date(2024, 6, 2, 7, 30, 0, 0, time.UTC)

// fakeRelay is a minimal in-process SMTP server.
type fakeRelay struct {
	listener   net.Listener
	rejectAuth bool
	rejectRcpt string

	mu       sync.Mutex
	authed   bool
	from     string
	rcpts    []string
	data     []byte
	sessions int
}

func startRelay(t *testing.T, opts ...func(*fakeRelay)) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	r := &fakeRelay{listener: ln}
	for _, opt := range opts {
		opt(r)
	}
	go r.serve()
	t.Cleanup(func() { ln.Close() })
	return r
}

func (r *fakeRelay) port() int {
	return r.listener.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) serve() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}
		go r.handle(conn)
	}
}

func (r *fakeRelay) handle(conn net.Conn) {
	defer conn.Close()
	r.mu.Lock()
	r.sessions++
	r.mu.Unlock()

	tp := textproto.NewConn(conn)
	reply := func(format string, args ...any) { _ = tp.PrintfLine(format, args...) }

	reply("220 relay.test ESMTP ready")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			reply("250-relay.test")
			reply("250-AUTH PLAIN")
			reply("250 8BITMIME")
		case "AUTH":
			if r.rejectAuth {
				reply("535 5.7.8 authentication credentials invalid")
				continue
			}
			r.mu.Lock()
			r.authed = true
			r.mu.Unlock()
			reply("235 2.7.0 accepted")
		case "MAIL":
			r.mu.Lock()
			r.from = addrArg(line)
			r.mu.Unlock()
			reply("250 2.1.0 ok")
		case "RCPT":
			addr := addrArg(line)
			if r.rejectRcpt != "" && addr == r.rejectRcpt {
				reply("550 5.1.1 no such user")
				continue
			}
			r.mu.Lock()
			r.rcpts = append(r.rcpts, addr)
			r.mu.Unlock()
			reply("250 2.1.5 ok")
		case "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			r.mu.Lock()
			r.data = data
			r.mu.Unlock()
			reply("250 2.0.0 queued")
		case "QUIT":
			reply("221 2.0.0 bye")
			return
		default:
			reply("502 5.5.2 command not recognized")
		}
	}
}

func addrArg(line string) string {
	start := strings.IndexByte(line, '<')
	end := strings.IndexByte(line, '>')
	if start < 0 || end < start {
		return ""
	}
	return line[start+1 : end]
}

func (r *fakeRelay) snapshot() (authed bool, from string, rcpts []string, data []byte, sessions int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authed, r.from, append([]string(nil), r.rcpts...), r.data, r.sessions
}

func testLogger(t *testing.T) *slog.Logger {
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

func relayConfig(r *fakeRelay, password string) SMTPConfig {
	return SMTPConfig{
		Host:     "127.0.0.1",
		Port:     r.port(),
		TLSMode:  TLSModeNone,
		Username: "reports@longballlabs.test",
		Password: password,
		Timeout:  5 * time.Second,
	}
}

func writeReport(t *testing.T) *domain.Report {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.ReportFileName)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 fake report body"), 0o644))
	return &domain.Report{Path: path, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), SizeBytes: 25}
}

func testMessage() Message {
	return Message{
		From:    "reports@longballlabs.test",
		To:      []string{"coach@club.test", "agent@club.test"},
		Subject: Subject(sendTime),
		Body:    DefaultBody,
		Date:    sendTime,
		Attachments: []Attachment{{
			Filename:    domain.ReportFileName,
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.3 fake report body"),
		}},
	}
}

// parsedMessage holds the decoded parts of a rendered message.
type parsedMessage struct {
	header         mail.Header
	text           string
	attachment     []byte
	attachmentName string
}

func parseMessage(t *testing.T, raw []byte) parsedMessage {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	out := parsedMessage{header: msg.Header}
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			out.attachmentName = part.FileName()
			out.attachment = body
			continue
		}
		out.text = string(body)
	}
	return out
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Daily Longball Labs Report - 2024-06-02", Subject(sendTime))
}

func TestMessageBytes(t *testing.T) {
	raw, err := testMessage().Bytes()
	require.NoError(t, err)

	parsed := parseMessage(t, raw)
	assert.Equal(t, "Daily Longball Labs Report - 2024-06-02", parsed.header.Get("Subject"))
	assert.Equal(t, "1.0", parsed.header.Get("MIME-Version"))
	assert.Contains(t, parsed.header.Get("To"), "coach@club.test")
	assert.Contains(t, parsed.header.Get("To"), "agent@club.test")
	assert.True(t, strings.HasSuffix(parsed.header.Get("Message-ID"), "@longballlabs.test>"))

	date, err := parsed.header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(sendTime))

	// multipart.Part decodes quoted-printable transparently.
	assert.Equal(t, DefaultBody, parsed.text)
	assert.Equal(t, domain.ReportFileName, parsed.attachmentName)
	assert.Equal(t, "%PDF-1.3 fake report body", string(parsed.attachment))
}

func TestMessageBytesLargeAttachment(t *testing.T) {
	msg := testMessage()
	payload := make([]byte, 10_000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	msg.Attachments[0].Data = payload

	raw, err := msg.Bytes()
	require.NoError(t, err)
	for _, line := range strings.Split(string(raw), "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
	assert.Equal(t, payload, parseMessage(t, raw).attachment)
}

func TestMessageBytesInvalid(t *testing.T) {
	msg := testMessage()
	msg.To = nil
	_, err := msg.Bytes()
	assert.Error(t, err)

	msg = testMessage()
	msg.From = "not an address"
	_, err = msg.Bytes()
	assert.Error(t, err)

	msg = testMessage()
	msg.To = []string{"coach@club.test", "broken"}
	_, err = msg.Bytes()
	assert.Error(t, err)
}

func TestSMTPSenderDeliversToEveryRecipient(t *testing.T) {
	relay := startRelay(t)
	sender := NewSMTPSender(relayConfig(relay, "app-password"), nil, testLogger(t))

	require.NoError(t, sender.Send(context.Background(), testMessage()))

	authed, from, rcpts, data, _ := relay.snapshot()
	assert.True(t, authed)
	assert.Equal(t, "reports@longballlabs.test", from)
	assert.Equal(t, []string{"coach@club.test", "agent@club.test"}, rcpts)

	parsed := parseMessage(t, data)
	assert.Equal(t, domain.ReportFileName, parsed.attachmentName)
}

func TestSMTPSenderSkipsAuthWithoutPassword(t *testing.T) {
	relay := startRelay(t)
	sender := NewSMTPSender(relayConfig(relay, ""), nil, testLogger(t))

	require.NoError(t, sender.Send(context.Background(), testMessage()))

	authed, _, rcpts, _, _ := relay.snapshot()
	assert.False(t, authed)
	assert.Len(t, rcpts, 2)
}

func TestSMTPSenderAuthRejected(t *testing.T) {
	relay := startRelay(t, func(r *fakeRelay) { r.rejectAuth = true })
	sender := NewSMTPSender(relayConfig(relay, "wrong"), nil, testLogger(t))

	err := sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")

	_, _, rcpts, data, _ := relay.snapshot()
	assert.Empty(t, rcpts)
	assert.Nil(t, data)
}

func TestSMTPSenderRecipientBounce(t *testing.T) {
	relay := startRelay(t, func(r *fakeRelay) { r.rejectRcpt = "agent@club.test" })
	sender := NewSMTPSender(relayConfig(relay, "app-password"), nil, testLogger(t))

	err := sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent@club.test")

	_, _, _, data, _ := relay.snapshot()
	assert.Nil(t, data)
}

func TestSMTPSenderConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender := NewSMTPSender(SMTPConfig{
		Host:    "127.0.0.1",
		Port:    port,
		TLSMode: TLSModeNone,
		Timeout: time.Second,
	}, nil, testLogger(t))

	err = sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

func TestSMTPSenderRequiresStartTLS(t *testing.T) {
	relay := startRelay(t)
	cfg := relayConfig(relay, "app-password")
	cfg.TLSMode = TLSModeStartTLS
	sender := NewSMTPSender(cfg, nil, testLogger(t))

	err := sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")

	authed, _, _, _, _ := relay.snapshot()
	assert.False(t, authed)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func TestSESSenderSendsRawMessage(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSenderWithClient(client, testLogger(t))

	require.NoError(t, sender.Send(context.Background(), testMessage()))
	require.NotNil(t, client.input)

	assert.Equal(t, "reports@longballlabs.test", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"coach@club.test", "agent@club.test"}, client.input.Destination.ToAddresses)
	require.NotNil(t, client.input.Content.Raw)

	parsed := parseMessage(t, client.input.Content.Raw.Data)
	assert.Equal(t, domain.ReportFileName, parsed.attachmentName)
}

func TestSESSenderError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	sender := NewSESSenderWithClient(client, testLogger(t))

	err := sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

// recordingSender captures messages without touching the network.
type recordingSender struct {
	messages []Message
	err      error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func TestDispatcherDisabledNeverDials(t *testing.T) {
	dials := 0
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		dials++
		return nil, errors.New("unexpected dial")
	}
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.test", Port: 587}, dial, testLogger(t))
	report := writeReport(t)

	logger, logs := testutil.NewTestLogger(t)
	d := NewDispatcher(false, sender, "reports@longballlabs.test", []string{"coach@club.test"}, logger)

	sent, err := d.Deliver(context.Background(), report)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, dials)
	assert.FileExists(t, report.Path)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Email sending skipped (SEND_EMAIL=false)")
}

func TestDispatcherDeliver(t *testing.T) {
	sender := &recordingSender{}
	report := writeReport(t)
	d := NewDispatcher(true, sender, "reports@longballlabs.test",
		[]string{"coach@club.test", "agent@club.test"}, testLogger(t)).
		WithClock(func() time.Time { return sendTime })

	sent, err := d.Deliver(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, "Daily Longball Labs Report - 2024-06-02", msg.Subject)
	assert.Equal(t, DefaultBody, msg.Body)
	assert.Equal(t, []string{"coach@club.test", "agent@club.test"}, msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, domain.ReportFileName, msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, "%PDF-1.3 fake report body", string(msg.Attachments[0].Data))
}

func TestDispatcherSendFailureKeepsReport(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	report := writeReport(t)
	d := NewDispatcher(true, sender, "reports@longballlabs.test", []string{"coach@club.test"}, testLogger(t))

	sent, err := d.Deliver(context.Background(), report)
	require.Error(t, err)
	assert.False(t, sent)
	assert.FileExists(t, report.Path)
}

func TestDispatcherMissingReport(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(true, sender, "reports@longballlabs.test", []string{"coach@club.test"}, testLogger(t))

	_, err := d.Deliver(context.Background(), &domain.Report{Path: filepath.Join(t.TempDir(), "missing.pdf")})
	require.Error(t, err)
	assert.Empty(t, sender.messages)
}

func TestDispatcherEndToEndOverSMTP(t *testing.T) {
	relay := startRelay(t)
	sender := NewSMTPSender(relayConfig(relay, "app-password"), nil, testLogger(t))
	d := NewDispatcher(true, sender, "reports@longballlabs.test",
		[]string{"coach@club.test"}, testLogger(t)).
		WithClock(func() time.Time { return sendTime })

	sent, err := d.Deliver(context.Background(), writeReport(t))
	require.NoError(t, err)
	assert.True(t, sent)

	_, _, rcpts, data, sessions := relay.snapshot()
	assert.Equal(t, 1, sessions)
	assert.Equal(t, []string{"coach@club.test"}, rcpts)
	parsed := parseMessage(t, data)
	assert.Equal(t, "Daily Longball Labs Report - 2024-06-02", parsed.header.Get("Subject"))
}
