package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachingsite/internal/domain"
)

func TestTemplateRenderer_Render_allTemplates(t *testing.T) {
	received := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	contact := &domain.ContactEmailData{
		SiteName: "Coaching",
		Entry: &domain.ContactEntry{
			Name: "Anna", Email: "anna@test.de", Message: "Hallo", SelectedPackage: "Intensiv", ReceivedAt: received,
		},
	}
	newsletter := &domain.NewsletterEmailData{
		SiteName: "Coaching",
		Subscriber: &domain.Subscriber{
			Gender: "Frau", FirstName: "Anna", LastName: "Muster", Email: "anna@test.de",
			BirthYear: 1985, Zip: "10115", Source: "website", SubscribedAt: received, Status: domain.SubscriberActive,
		},
		Created: true,
	}
	booking := &domain.BookingEmailData{
		SiteName: "Coaching",
		Slot: &domain.TimeSlot{
			ID: "slot-1", Date: "2026-11-02", Time: "10:00", Duration: 60, Status: domain.SlotPending,
			Booking: &domain.Booking{Name: "Anna", Email: "anna@test.de", Phone: "030 123456", ContactType: domain.ContactTypeZoom, BookedAt: received},
		},
	}

	tests := []struct {
		template    string
		data        any
		wantSubject string
		wantInBody  string
	}{
		{"contact_admin", contact, "Neue Kontaktanfrage von Anna", "Intensiv"},
		{"contact_confirmation", contact, "Vielen Dank für Ihre Nachricht – Coaching", "Hallo Anna"},
		{"newsletter_admin", newsletter, "Neue Newsletter-Anmeldung: anna@test.de", "10115"},
		{"newsletter_welcome", newsletter, "Willkommen beim Newsletter von Coaching", "Liebe Frau Muster"},
		{"booking_admin", booking, "Neue Terminanfrage: 02.11.2026 10:00 von Anna", "Zoom-Videocall"},
		{"booking_received", booking, "Ihre Terminanfrage für den 02.11.2026 – Coaching", "10:00 Uhr"},
		{"booking_confirmed", booking, "Ihr Termin am 02.11.2026 ist bestätigt – Coaching", "Zoom-Link"},
		{"booking_declined", booking, "Ihre Terminanfrage für den 02.11.2026 – Coaching", "anderen freien Termin"},
	}

	r := NewTemplateRenderer(nil)
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			subject, htmlBody, textBody, err := r.Render(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, htmlBody, tt.wantInBody)
			assert.Contains(t, textBody, tt.wantInBody)
		})
	}
}

func TestTemplateRenderer_Render_escapesUserInput(t *testing.T) {
	data := &domain.ContactEmailData{
		SiteName: "Coaching",
		Entry: &domain.ContactEntry{
			Name:       "Eve\r\nBcc: victim@example.com",
			Email:      "eve@test.de",
			Message:    `<script>alert("x")</script>`,
			Goal:       `<b onmouseover="x">`,
			ReceivedAt: time.Now(),
		},
	}

	subject, htmlBody, _, err := NewTemplateRenderer(nil).Render("contact_admin", data)
	require.NoError(t, err)

	assert.NotContains(t, subject, "\r")
	assert.NotContains(t, subject, "\n")
	assert.Equal(t, "Neue Kontaktanfrage von EveBcc: victim@example.com", subject)
	assert.NotContains(t, htmlBody, "<script>")
	assert.Contains(t, htmlBody, "&lt;script&gt;")
	assert.NotContains(t, htmlBody, `<b onmouseover`)
}

func TestTemplateRenderer_Render_unknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer(nil).Render("does_not_exist", nil)
	assert.Error(t, err)
}

func TestHeaderValue(t *testing.T) {
	assert.Equal(t, "ab c", HeaderValue(" a\r\nb\x00 c\n"))
	assert.Equal(t, []string{"x@y.de"}, sanitizeAll([]string{"", "x@y.de\r\n", "\n"}))
}

func TestTemplateRenderer_Render_timestampsInSiteLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	data := &domain.ContactEmailData{
		SiteName: "Coaching",
		Entry: &domain.ContactEntry{
			Name: "Anna", Email: "anna@test.de", Message: "Hallo",
			ReceivedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		},
	}

	_, htmlBody, textBody, err := NewTemplateRenderer(berlin).Render("contact_admin", data)
	require.NoError(t, err)
	assert.Contains(t, textBody, "Eingegangen: 15.10.2026 11:30")
	assert.Contains(t, htmlBody, "15.10.2026 11:30")

	_, _, textBody, err = NewTemplateRenderer(nil).Render("contact_admin", data)
	require.NoError(t, err)
	assert.Contains(t, textBody, "Eingegangen: 15.10.2026 09:30")
}
