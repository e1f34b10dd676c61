package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coachingsite/internal/domain"
)

const sendTimeout = 30 * time.Second

// NotifierConfig names the site and the inbox receiving admin notifications.
// An empty AdminEmail disables admin notifications.
type NotifierConfig struct {
	SiteName   string
	AdminEmail string
}

// Notifier renders and sends notification emails in the background. Delivery errors are logged.
type Notifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	cfg      NotifierConfig
	logger   *slog.Logger
	wg       sync.WaitGroup
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier sending through mailer.
func NewNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, cfg NotifierConfig, logger *slog.Logger) *Notifier {
	return &Notifier{mailer: mailer, renderer: renderer, cfg: cfg, logger: logger}
}

func (n *Notifier) ContactReceived(ctx context.Context, entry *domain.ContactEntry) {
	data := domain.ContactEmailData{SiteName: n.cfg.SiteName, Entry: entry}
	n.toAdmin(ctx, "contact_admin", entry.Email, data)
	n.dispatch(ctx, "contact_confirmation", entry.Email, "", data)
}

func (n *Notifier) NewsletterSubscribed(ctx context.Context, sub *domain.Subscriber, created bool) {
	data := domain.NewsletterEmailData{SiteName: n.cfg.SiteName, Subscriber: sub, Created: created}
	n.toAdmin(ctx, "newsletter_admin", sub.Email, data)
	if created {
		n.dispatch(ctx, "newsletter_welcome", sub.Email, "", data)
	}
}

func (n *Notifier) BookingRequested(ctx context.Context, slot *domain.TimeSlot) {
	if slot.Booking == nil {
		return
	}
	data := domain.BookingEmailData{SiteName: n.cfg.SiteName, Slot: slot}
	n.toAdmin(ctx, "booking_admin", slot.Booking.Email, data)
	n.dispatch(ctx, "booking_received", slot.Booking.Email, n.cfg.AdminEmail, data)
}

func (n *Notifier) BookingDecided(ctx context.Context, slot *domain.TimeSlot) {
	if slot.Booking == nil {
		return
	}
	tmpl := "booking_declined"
	if slot.Status == domain.SlotConfirmed {
		tmpl = "booking_confirmed"
	}
	n.dispatch(ctx, tmpl, slot.Booking.Email, n.cfg.AdminEmail, domain.BookingEmailData{SiteName: n.cfg.SiteName, Slot: slot})
}

// Wait blocks until every dispatched email has been handed to the mailer or has failed.
// It gives up with ctx's error when ctx ends first.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) toAdmin(ctx context.Context, tmpl, replyTo string, data any) {
	if n.cfg.AdminEmail == "" {
		n.logger.Info("admin notification skipped, no recipient configured", "template", tmpl)
		return
	}
	n.dispatch(ctx, tmpl, n.cfg.AdminEmail, replyTo, data)
}

// dispatch renders synchronously so the template data is not shared with the request after
// return, then sends on a goroutine that outlives the request context.
func (n *Notifier) dispatch(ctx context.Context, tmpl, to, replyTo string, data any) {
	subject, html, text, err := n.renderer.Render(tmpl, data)
	if err != nil {
		n.logger.Error("failed to render email", "template", tmpl, "error", err)
		return
	}
	msg := domain.OutgoingEmail{To: to, ReplyTo: replyTo, Subject: subject, HTML: html, Text: text}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := n.mailer.Send(sendCtx, msg); err != nil {
			n.logger.Error("failed to send email", "template", tmpl, "to", domain.MaskEmail(to), "error", err)
			return
		}
		n.logger.Info("email sent", "template", tmpl, "to", domain.MaskEmail(to))
	}()
}
