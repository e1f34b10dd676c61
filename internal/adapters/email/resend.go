package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"coachingsite/internal/domain"
)

// resendAPI is the subset of the Resend emails service used by resendMailer.
type resendAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type resendMailer struct {
	emails resendAPI
	from   string
	logger *slog.Logger
}

func newResendMailer(config MailerConfig, logger *slog.Logger) *resendMailer {
	client := resend.NewClient(config.ResendAPIKey)
	return &resendMailer{
		emails: client.Emails,
		from:   formatFrom(config.FromName, config.FromAddress),
		logger: logger,
	}
}

func (s *resendMailer) Send(ctx context.Context, msg domain.OutgoingEmail) error {
	to := sanitizeAll([]string{msg.To})
	if len(to) == 0 {
		return fmt.Errorf("email has no recipient")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: HeaderValue(msg.Subject),
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if replyTo := HeaderValue(msg.ReplyTo); replyTo != "" {
		params.ReplyTo = replyTo
	}
	sent, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	s.logger.Info("email sent via Resend", "message_id", sent.Id)
	return nil
}
