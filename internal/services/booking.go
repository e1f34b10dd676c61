package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"coachingsite/internal/domain"
)

type bookingService struct {
	repo     domain.SlotRepository
	notifier domain.Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewBookingService returns a BookingService. Slot dates and times are wall-clock values in loc.
func NewBookingService(repo domain.SlotRepository, notifier domain.Notifier, loc *time.Location) domain.BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{repo: repo, notifier: notifier, loc: loc, now: time.Now}
}

// CreateSlots expands series into one slot per occurrence. Occurrences whose date and time
// already exist are skipped; the returned slice holds only new slots.
func (s *bookingService) CreateSlots(ctx context.Context, series domain.SlotSeries) ([]*domain.TimeSlot, error) {
	first, err := time.ParseInLocation(domain.SlotDateLayout, series.Date, s.loc)
	if err != nil {
		return nil, domain.NewValidationError("Ungültiges Datum (JJJJ-MM-TT)")
	}

	count, step := 1, 0
	switch series.Repeat {
	case domain.RepeatDaily:
		count, step = series.Count, 1
	case domain.RepeatWeekly:
		count, step = series.Count, 7
	}
	if count < 1 {
		count = 1
	}

	createdAt := timestamp(s.now)
	slots := make([]*domain.TimeSlot, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, &domain.TimeSlot{
			ID:        uuid.NewString(),
			Date:      first.AddDate(0, 0, i*step).Format(domain.SlotDateLayout),
			Time:      series.Time,
			Duration:  series.Duration,
			Status:    domain.SlotAvailable,
			CreatedAt: createdAt,
		})
	}

	created, err := s.repo.CreateMany(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("create slots: %w", err)
	}
	return created, nil
}

func (s *bookingService) ListSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// ListOpenSlots returns available slots that have not started yet, without booking details.
func (s *bookingService) ListOpenSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	now := s.now().In(s.loc)
	slots, err := s.repo.ListAvailableFrom(ctx, now.Format(domain.SlotDateLayout))
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	open := make([]*domain.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if start, err := slot.Start(s.loc); err == nil && !start.After(now) {
			continue
		}
		open = append(open, slot.Public())
	}
	return open, nil
}

// Book claims an available slot for a visitor. Slots that already started are unavailable.
func (s *bookingService) Book(ctx context.Context, slotID string, booking *domain.Booking) (*domain.TimeSlot, error) {
	if _, err := uuid.Parse(slotID); err != nil {
		return nil, domain.ErrNotFound
	}
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if start, err := slot.Start(s.loc); err != nil || !start.After(s.now()) {
		return nil, domain.ErrSlotUnavailable
	}

	booking.Name = strings.TrimSpace(booking.Name)
	booking.Email = normalizeEmail(booking.Email)
	booking.Phone = strings.TrimSpace(booking.Phone)
	booking.Message = strings.TrimSpace(booking.Message)
	booking.BookedAt = timestamp(s.now)

	booked, err := s.repo.Book(ctx, slotID, booking)
	if err != nil {
		return nil, fmt.Errorf("book slot: %w", err)
	}
	s.notifier.BookingRequested(ctx, booked)
	return booked, nil
}

func (s *bookingService) Confirm(ctx context.Context, slotID string) (*domain.TimeSlot, error) {
	return s.decide(ctx, slotID, domain.SlotConfirmed)
}

func (s *bookingService) Decline(ctx context.Context, slotID string) (*domain.TimeSlot, error) {
	return s.decide(ctx, slotID, domain.SlotDeclined)
}

func (s *bookingService) decide(ctx context.Context, slotID, status string) (*domain.TimeSlot, error) {
	if _, err := uuid.Parse(slotID); err != nil {
		return nil, domain.ErrNotFound
	}
	slot, err := s.repo.Transition(ctx, slotID, domain.SlotPending, status)
	if err != nil {
		return nil, fmt.Errorf("%s slot: %w", status, err)
	}
	s.notifier.BookingDecided(ctx, slot)
	return slot, nil
}

func (s *bookingService) DeleteSlot(ctx context.Context, slotID string) error {
	if _, err := uuid.Parse(slotID); err != nil {
		return domain.ErrNotFound
	}
	if err := s.repo.DeleteAvailable(ctx, slotID); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}
