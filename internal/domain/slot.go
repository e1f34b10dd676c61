package domain

import (
	"context"
	"time"
)

// Slot statuses. A slot moves available -> pending -> confirmed|declined.
const (
	SlotAvailable = "available"
	SlotPending   = "pending"
	SlotConfirmed = "confirmed"
	SlotDeclined  = "declined"
)

// Contact types a visitor can pick for the appointment.
const (
	ContactTypeZoom  = "zoom"
	ContactTypePhone = "phone"
)

// Slot date and time layouts.
const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// Booking is attached to a TimeSlot when a visitor claims it.
// swagger:model Booking
type Booking struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message,omitempty"`
	ContactType string    `json:"contactType"`
	BookedAt    time.Time `json:"bookedAt"`
}

// TimeSlot is a bookable appointment.
// swagger:model TimeSlot
type TimeSlot struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`
	Booking   *Booking  `json:"booking,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns a copy without booking details, for visitor-facing listings.
func (s *TimeSlot) Public() *TimeSlot {
	cp := *s
	cp.Booking = nil
	return &cp
}

// Start returns the slot start in loc.
func (s *TimeSlot) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, s.Date+" "+s.Time, loc)
}

// Repeat frequencies for bulk slot creation.
const (
	RepeatNone   = "none"
	RepeatDaily  = "daily"
	RepeatWeekly = "weekly"
)

// SlotSeries describes one or more slots to create.
type SlotSeries struct {
	Date     string
	Time     string
	Duration int
	Repeat   string
	Count    int
}

// SlotRepository defines storage for time slots.
type SlotRepository interface {
	// CreateMany inserts slots, skipping any whose date and time already exist.
	// It returns the slots actually created.
	CreateMany(ctx context.Context, slots []*TimeSlot) ([]*TimeSlot, error)
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	List(ctx context.Context) ([]*TimeSlot, error)
	ListAvailableFrom(ctx context.Context, date string) ([]*TimeSlot, error)
	// Book attaches booking and moves the slot from available to pending.
	// It returns ErrSlotUnavailable when the slot exists but is not available.
	Book(ctx context.Context, id string, booking *Booking) (*TimeSlot, error)
	// Transition moves the slot from one status to another. It returns ErrInvalidTransition
	// when the slot exists but is not in the from status.
	Transition(ctx context.Context, id, from, to string) (*TimeSlot, error)
	// DeleteAvailable removes an available slot. It returns ErrSlotNotDeletable for any other status.
	DeleteAvailable(ctx context.Context, id string) error
}

// BookingService defines slot administration and visitor booking.
type BookingService interface {
	CreateSlots(ctx context.Context, series SlotSeries) ([]*TimeSlot, error)
	ListSlots(ctx context.Context) ([]*TimeSlot, error)
	ListOpenSlots(ctx context.Context) ([]*TimeSlot, error)
	Book(ctx context.Context, slotID string, booking *Booking) (*TimeSlot, error)
	Confirm(ctx context.Context, slotID string) (*TimeSlot, error)
	Decline(ctx context.Context, slotID string) (*TimeSlot, error)
	DeleteSlot(ctx context.Context, slotID string) error
}
