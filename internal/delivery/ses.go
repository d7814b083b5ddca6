package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the part of the SES v2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers the same raw MIME message through Amazon SES.
type SESSender struct {
	client SESAPI
	logger *slog.Logger
}

// NewSESSender builds a sender from the default AWS credential chain
// (environment, shared config, instance role).
func NewSESSender(ctx context.Context, logger *slog.Logger) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), logger), nil
}

// NewSESSenderWithClient wraps an existing client.
func NewSESSenderWithClient(client SESAPI, logger *slog.Logger) *SESSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SESSender{client: client, logger: logger.With(slog.String("component", "ses"))}
}

// Send implements Sender
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	content, err := msg.Bytes()
	if err != nil {
		return err
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from.Address),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: content},
		},
	})
	if err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}

	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}
	s.logger.InfoContext(ctx, "Message accepted by SES",
		slog.String("message_id", messageID),
		slog.Int("recipients", len(msg.To)))
	return nil
}
