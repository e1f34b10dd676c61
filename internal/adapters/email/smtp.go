package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"

	"coachingsite/internal/domain"
)

const (
	defaultSMTPPort    = 587
	implicitTLSPort    = 465
	defaultSMTPTimeout = 30 * time.Second
)

type smtpMailer struct {
	host        string
	port        int
	username    string
	password    string
	fromName    string
	fromAddress string
	logger      *slog.Logger
}

func newSMTPMailer(config MailerConfig, logger *slog.Logger) *smtpMailer {
	port := config.SMTP.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	return &smtpMailer{
		host:        config.SMTP.Host,
		port:        port,
		username:    config.SMTP.Username,
		password:    config.SMTP.Password,
		fromName:    HeaderValue(config.FromName),
		fromAddress: HeaderValue(config.FromAddress),
		logger:      logger,
	}
}

// Send delivers msg through the relay. The whole exchange, including the greeting, is bounded
// by ctx: the connection deadline is set from it before the first read.
func (s *smtpMailer) Send(ctx context.Context, msg domain.OutgoingEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.newMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	timeout := defaultSMTPTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(s.dial),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	s.logger.Info("email sent via SMTP", "relay", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	return nil
}

// dial connects with ctx and carries its deadline onto the connection, so a relay that
// accepts and then stalls cannot block past it. Port 465 speaks TLS from the first byte.
func (s *smtpMailer) dial(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if s.port != implicitTLSPort {
		return conn, nil
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// newMessage builds a multipart/alternative message. Header values are sanitised before
// they reach the message.
func (s *smtpMailer) newMessage(msg domain.OutgoingEmail) (*mail.Msg, error) {
	to := HeaderValue(msg.To)
	if to == "" {
		return nil, errors.New("email has no recipient")
	}

	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddress); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if replyTo := HeaderValue(msg.ReplyTo); replyTo != "" {
		if err := m.ReplyTo(replyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	m.Subject(HeaderValue(msg.Subject))
	m.SetDate()
	m.SetMessageID()

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
