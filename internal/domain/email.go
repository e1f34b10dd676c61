package domain

import (
	"context"
	"strings"
	"unicode/utf8"
)

// OutgoingEmail is one fully rendered message ready for a transport.
type OutgoingEmail struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg OutgoingEmail) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Notifier sends the best-effort emails that follow a stored record. Implementations must
// not block the caller on delivery and must not report delivery failures.
type Notifier interface {
	ContactReceived(ctx context.Context, entry *ContactEntry)
	NewsletterSubscribed(ctx context.Context, sub *Subscriber, created bool)
	BookingRequested(ctx context.Context, slot *TimeSlot)
	BookingDecided(ctx context.Context, slot *TimeSlot)
}

// ContactEmailData is the template data for contact emails.
type ContactEmailData struct {
	SiteName string
	Entry    *ContactEntry
}

// NewsletterEmailData is the template data for newsletter emails.
type NewsletterEmailData struct {
	SiteName   string
	Subscriber *Subscriber
	Created    bool
}

// BookingEmailData is the template data for booking emails.
type BookingEmailData struct {
	SiteName string
	Slot     *TimeSlot
}

// MaskEmail keeps the first character of the local part and the domain, for log output.
func MaskEmail(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at < 1 {
		return "***"
	}
	_, size := utf8.DecodeRuneInString(addr)
	return addr[:size] + "***" + addr[at:]
}
