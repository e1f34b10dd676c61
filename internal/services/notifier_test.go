package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachingsite/internal/domain"
)

func newTestNotifier(mailer *fakeMailer, renderer domain.EmailTemplateRenderer, adminEmail string) (*Notifier, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewNotifier(mailer, renderer, NotifierConfig{SiteName: "Coaching", AdminEmail: adminEmail}, logger), &buf
}

func TestNotifier_ContactReceived(t *testing.T) {
	mailer := &fakeMailer{}
	n, _ := newTestNotifier(mailer, stubRenderer{}, "coach@example.de")

	n.ContactReceived(context.Background(), &domain.ContactEntry{Name: "Anna", Email: "anna@test.de"})
	require.NoError(t, n.Wait(context.Background()))

	sent := mailer.byTemplate()
	require.Len(t, sent, 2)
	assert.Equal(t, "coach@example.de", sent["contact_admin"].To)
	assert.Equal(t, "anna@test.de", sent["contact_admin"].ReplyTo)
	assert.Equal(t, "anna@test.de", sent["contact_confirmation"].To)
}

func TestNotifier_detachedFromRequest(t *testing.T) {
	mailer := &fakeMailer{}
	n, _ := newTestNotifier(mailer, stubRenderer{}, "coach@example.de")

	ctx, cancel := context.WithCancel(context.Background())
	n.NewsletterSubscribed(ctx, &domain.Subscriber{Email: "anna@test.de"}, true)
	cancel()
	require.NoError(t, n.Wait(context.Background()))

	sent := mailer.byTemplate()
	assert.Contains(t, sent, "newsletter_admin")
	assert.Contains(t, sent, "newsletter_welcome")
}

func TestNotifier_NewsletterUpdateSkipsWelcome(t *testing.T) {
	mailer := &fakeMailer{}
	n, _ := newTestNotifier(mailer, stubRenderer{}, "coach@example.de")

	n.NewsletterSubscribed(context.Background(), &domain.Subscriber{Email: "anna@test.de"}, false)
	require.NoError(t, n.Wait(context.Background()))

	sent := mailer.byTemplate()
	assert.Contains(t, sent, "newsletter_admin")
	assert.NotContains(t, sent, "newsletter_welcome")
}

func TestNotifier_NoAdminEmail(t *testing.T) {
	mailer := &fakeMailer{}
	n, logs := newTestNotifier(mailer, stubRenderer{}, "")

	slot := &domain.TimeSlot{Date: "2026-10-20", Time: "10:00", Status: domain.SlotPending, Booking: &domain.Booking{Email: "max@test.de"}}
	n.BookingRequested(context.Background(), slot)
	require.NoError(t, n.Wait(context.Background()))

	sent := mailer.byTemplate()
	require.Len(t, sent, 1)
	assert.Equal(t, "max@test.de", sent["booking_received"].To)
	assert.Contains(t, logs.String(), "admin notification skipped")
}

func TestNotifier_BookingDecided(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{domain.SlotConfirmed, "booking_confirmed"},
		{domain.SlotDeclined, "booking_declined"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			mailer := &fakeMailer{}
			n, _ := newTestNotifier(mailer, stubRenderer{}, "coach@example.de")

			n.BookingDecided(context.Background(), &domain.TimeSlot{Status: tt.status, Booking: &domain.Booking{Email: "max@test.de"}})
			n.BookingDecided(context.Background(), &domain.TimeSlot{Status: tt.status})
			require.NoError(t, n.Wait(context.Background()))

			sent := mailer.byTemplate()
			require.Len(t, sent, 1)
			assert.Equal(t, "max@test.de", sent[tt.want].To)
			assert.Equal(t, "coach@example.de", sent[tt.want].ReplyTo)
		})
	}
}

func TestNotifier_failuresAreLogged(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	n, logs := newTestNotifier(mailer, stubRenderer{}, "coach@example.de")

	n.ContactReceived(context.Background(), &domain.ContactEntry{Email: "anna@test.de"})
	done := make(chan struct{})
	go func() {
		assert.NoError(t, n.Wait(context.Background()))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier did not finish")
	}
	assert.Contains(t, logs.String(), "failed to send email")

	n, logs = newTestNotifier(&fakeMailer{}, stubRenderer{err: errors.New("bad template")}, "coach@example.de")
	n.ContactReceived(context.Background(), &domain.ContactEntry{Email: "anna@test.de"})
	require.NoError(t, n.Wait(context.Background()))
	assert.Contains(t, logs.String(), "failed to render email")
}

// blockingMailer holds every send until release is closed.
type blockingMailer struct {
	release chan struct{}
}

func (m *blockingMailer) Send(context.Context, domain.OutgoingEmail) error {
	<-m.release
	return nil
}

func TestNotifier_WaitBoundedByContext(t *testing.T) {
	mailer := &blockingMailer{release: make(chan struct{})}
	n := NewNotifier(mailer, stubRenderer{}, NotifierConfig{AdminEmail: "coach@example.de"}, slog.New(slog.DiscardHandler))

	n.ContactReceived(context.Background(), &domain.ContactEntry{Email: "anna@test.de"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Wait(ctx), context.DeadlineExceeded)

	close(mailer.release)
	assert.NoError(t, n.Wait(context.Background()))
}

func TestNotifier_logsMaskRecipients(t *testing.T) {
	n, logs := newTestNotifier(&fakeMailer{}, stubRenderer{}, "coach@example.de")

	n.ContactReceived(context.Background(), &domain.ContactEntry{Email: "anna@test.de"})
	require.NoError(t, n.Wait(context.Background()))

	assert.Contains(t, logs.String(), "a***@test.de")
	assert.NotContains(t, logs.String(), "anna@test.de")
	assert.NotContains(t, logs.String(), "coach@example.de")
}
