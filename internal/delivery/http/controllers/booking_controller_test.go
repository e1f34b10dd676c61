package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"coachingsite/internal/delivery/http/helpers"
	"coachingsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingService implements domain.BookingService over an in-memory slot list.
type fakeBookingService struct {
	slots      []*domain.TimeSlot
	lastSeries domain.SlotSeries
	listErr    error
}

func (f *fakeBookingService) find(id string) *domain.TimeSlot {
	for _, s := range f.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (f *fakeBookingService) CreateSlots(ctx context.Context, series domain.SlotSeries) ([]*domain.TimeSlot, error) {
	f.lastSeries = series
	count := 1
	if series.Repeat == domain.RepeatWeekly {
		count = series.Count
	}
	var created []*domain.TimeSlot
	for i := 0; i < count; i++ {
		s := &domain.TimeSlot{ID: fmt.Sprintf("slot-%d", len(f.slots)+1), Date: series.Date, Time: series.Time, Duration: series.Duration, Status: domain.SlotAvailable}
		f.slots = append(f.slots, s)
		created = append(created, s)
	}
	return created, nil
}

func (f *fakeBookingService) ListSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	return f.slots, f.listErr
}

func (f *fakeBookingService) ListOpenSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	var open []*domain.TimeSlot
	for _, s := range f.slots {
		if s.Status == domain.SlotAvailable {
			open = append(open, s.Public())
		}
	}
	return open, f.listErr
}

func (f *fakeBookingService) Book(ctx context.Context, id string, b *domain.Booking) (*domain.TimeSlot, error) {
	s := f.find(id)
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Status != domain.SlotAvailable {
		return nil, fmt.Errorf("book slot: %w", domain.ErrSlotUnavailable)
	}
	s.Status, s.Booking = domain.SlotPending, b
	return s, nil
}

func (f *fakeBookingService) transition(id, to string) (*domain.TimeSlot, error) {
	s := f.find(id)
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Status != domain.SlotPending {
		return nil, domain.ErrInvalidTransition
	}
	s.Status = to
	return s, nil
}

func (f *fakeBookingService) Confirm(ctx context.Context, id string) (*domain.TimeSlot, error) {
	return f.transition(id, domain.SlotConfirmed)
}

func (f *fakeBookingService) Decline(ctx context.Context, id string) (*domain.TimeSlot, error) {
	return f.transition(id, domain.SlotDeclined)
}

func (f *fakeBookingService) DeleteSlot(ctx context.Context, id string) error {
	for i, s := range f.slots {
		if s.ID != id {
			continue
		}
		if s.Status != domain.SlotAvailable {
			return fmt.Errorf("delete slot: %w", domain.ErrSlotNotDeletable)
		}
		f.slots = append(f.slots[:i], f.slots[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

// fakeAdminAuth accepts the password "geheim".
type fakeAdminAuth struct{}

func (fakeAdminAuth) Login(ctx context.Context, password string) (string, time.Time, error) {
	if password != "geheim" {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	return adminToken, time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC), nil
}

func newBookingHandler(svc *fakeBookingService) http.Handler {
	return NewBookingController(testLogger, svc, fakeAdminAuth{}).Handler(testGate)
}

func validBooking(slotID string) map[string]string {
	return map[string]string{
		"slotId":      slotID,
		"name":        "Max Mustermann",
		"email":       "max@test.de",
		"phone":       "+49 (0)151 234-567",
		"contactType": domain.ContactTypeZoom,
	}
}

func TestBookingController_AdminLogin(t *testing.T) {
	h := newBookingHandler(&fakeBookingService{})

	rr := do(t, h, http.MethodPost, "/booking?action=admin-login", map[string]string{"password": "geheim"}, false)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp AdminLoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, adminToken, resp.Token)
	assert.False(t, resp.ExpiresAt.IsZero())

	rr = do(t, h, http.MethodPost, "/booking?action=admin-login", map[string]string{"password": "falsch"}, false)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, helpers.ErrCodeUnauthorized, decodeEnvelope(t, rr).Code)

	rr = do(t, h, http.MethodPost, "/booking?action=admin-login", map[string]string{}, false)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/booking?action=admin-login", nil, false)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBookingController_Lifecycle(t *testing.T) {
	svc := &fakeBookingService{}
	h := newBookingHandler(svc)

	// Create requires admin.
	rr := do(t, h, http.MethodPost, "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "10:00"}, false)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "10:00"}, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created SlotListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Len(t, created.Slots, 1)
	assert.Equal(t, 60, svc.lastSeries.Duration)
	slotID := created.Slots[0].ID

	// Visitors see it without booking details and can book it.
	rr = do(t, h, http.MethodGet, "/booking?action=slots", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), slotID)

	rr = do(t, h, http.MethodPost, "/booking?action=book", validBooking(slotID), false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, domain.SlotPending, svc.find(slotID).Status)

	rr = do(t, h, http.MethodPost, "/booking?action=book", validBooking(slotID), false)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodGet, "/booking?action=slots", nil, false)
	assert.NotContains(t, rr.Body.String(), "max@test.de")

	// Decline, then the slot stays listed and cannot be deleted.
	rr = do(t, h, http.MethodPost, "/booking?action=decline-slot", map[string]string{"id": slotID}, true)
	require.Equal(t, http.StatusOK, rr.Code)
	var declined SlotResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &declined))
	assert.Equal(t, domain.SlotDeclined, declined.Slot.Status)

	rr = do(t, h, http.MethodPost, "/booking?action=delete-slot", map[string]string{"id": slotID}, true)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, msgSlotNotDeletable, decodeEnvelope(t, rr).Message)

	rr = do(t, h, http.MethodPost, "/booking?action=confirm-slot", map[string]string{"id": slotID}, true)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodGet, "/booking?action=admin-slots", nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	var all SlotListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all.Slots, 1)
	require.NotNil(t, all.Slots[0].Booking)
	assert.Equal(t, "max@test.de", all.Slots[0].Booking.Email)
}

func TestBookingController_DeleteAvailable(t *testing.T) {
	svc := &fakeBookingService{slots: []*domain.TimeSlot{{ID: "slot-1", Status: domain.SlotAvailable}}}
	h := newBookingHandler(svc)

	rr := do(t, h, http.MethodPost, "/booking?action=delete-slot", map[string]string{"id": "slot-1"}, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, svc.slots)

	rr = do(t, h, http.MethodPost, "/booking?action=delete-slot", map[string]string{"id": "slot-1"}, true)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, msgSlotNotFound, decodeEnvelope(t, rr).Message)
}

func TestBookingController_Validation(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        any
		wantMessage string
	}{
		{"book without slot", "/booking?action=book", validBooking(""), "Bitte wählen Sie einen Termin"},
		{"book bad phone", "/booking?action=book", func() map[string]string { b := validBooking("s"); b["phone"] = "abc"; return b }(), "Ungültige Telefonnummer"},
		{"book bad contact type", "/booking?action=book", func() map[string]string { b := validBooking("s"); b["contactType"] = "email"; return b }(), "Ungültige Kontaktart"},
		{"slot bad date", "/booking?action=create-slot", map[string]any{"date": "02.11.2026", "time": "10:00"}, "Ungültiges Datum (JJJJ-MM-TT)"},
		{"slot bad time", "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "25:00"}, "Ungültige Uhrzeit (HH:MM)"},
		{"slot too short", "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "10:00", "duration": 10}, "Die Dauer muss zwischen 15 und 480 Minuten liegen"},
		{"repeat without count", "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "10:00", "repeat": "weekly"}, "Die Anzahl der Termine muss zwischen 1 und 52 liegen"},
		{"unknown repeat", "/booking?action=create-slot", map[string]any{"date": "2026-11-02", "time": "10:00", "repeat": "monthly"}, "Ungültige Wiederholung"},
		{"slot id missing", "/booking?action=confirm-slot", map[string]string{"id": " "}, "Termin-ID fehlt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBookingHandler(&fakeBookingService{})
			rr := do(t, h, http.MethodPost, tt.target, tt.body, true)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantMessage, decodeEnvelope(t, rr).Message)
		})
	}
}

func TestBookingController_WeeklySeries(t *testing.T) {
	svc := &fakeBookingService{}
	h := newBookingHandler(svc)

	rr := do(t, h, http.MethodPost, "/booking?action=create-slot",
		map[string]any{"date": "2026-11-02", "time": "10:00", "duration": 90, "repeat": "weekly", "repeatCount": 4}, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.SlotSeries{Date: "2026-11-02", Time: "10:00", Duration: 90, Repeat: "weekly", Count: 4}, svc.lastSeries)
	assert.Equal(t, "4 Termin(e) erstellt", decodeEnvelope(t, rr).Message)
}

func TestBookingController_InternalError(t *testing.T) {
	h := newBookingHandler(&fakeBookingService{listErr: fmt.Errorf("list slots: %w", context.DeadlineExceeded)})

	rr := do(t, h, http.MethodGet, "/booking?action=slots", nil, false)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.Equal(t, helpers.MsgInternalError, resp.Message)
	assert.NotContains(t, rr.Body.String(), "deadline")
}
