package email

import (
	"context"
	"log/slog"

	"coachingsite/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// SMTPConfig holds configuration for a plain SMTP relay (STARTTLS when offered).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider     string
	FromAddress  string
	FromName     string
	SES          SESConfig
	SMTP         SMTPConfig
	ResendAPIKey string
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "resend" the Resend API and
// "smtp" an SMTP relay. "noop", an unknown provider or a provider missing its settings yields a
// mailer that logs and skips every send.
func NewMailer(config MailerConfig, logger *slog.Logger) domain.Mailer {
	switch config.Provider {
	case "ses":
		if config.SES.Region == "" || config.FromAddress == "" {
			logger.Warn("ses mailer not configured, emails will be skipped")
			return NewNoopMailer(logger)
		}
		return newSESMailer(config, logger)
	case "resend":
		if config.ResendAPIKey == "" || config.FromAddress == "" {
			logger.Warn("resend mailer not configured, emails will be skipped")
			return NewNoopMailer(logger)
		}
		return newResendMailer(config, logger)
	case "smtp":
		if config.SMTP.Host == "" || config.FromAddress == "" {
			logger.Warn("smtp mailer not configured, emails will be skipped")
			return NewNoopMailer(logger)
		}
		return newSMTPMailer(config, logger)
	case "noop", "":
		return NewNoopMailer(logger)
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return NewNoopMailer(logger)
	}
}

type noopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer returns a mailer that only logs.
func NewNoopMailer(logger *slog.Logger) domain.Mailer {
	return &noopMailer{logger: logger}
}

func (n *noopMailer) Send(_ context.Context, msg domain.OutgoingEmail) error {
	n.logger.Info("mail transport not configured, email skipped", "to", domain.MaskEmail(HeaderValue(msg.To)), "subject", HeaderValue(msg.Subject))
	return nil
}

func formatFrom(name, address string) string {
	address = HeaderValue(address)
	if name = HeaderValue(name); name != "" {
		return name + " <" + address + ">"
	}
	return address
}
