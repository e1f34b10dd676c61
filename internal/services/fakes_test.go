package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"coachingsite/internal/domain"
)

var errDB = errors.New("db down")

// recordingNotifier records the notifications requested by services.
type recordingNotifier struct {
	contacts   []*domain.ContactEntry
	subscribed []*domain.Subscriber
	created    []bool
	requested  []*domain.TimeSlot
	decided    []*domain.TimeSlot
}

func (n *recordingNotifier) ContactReceived(ctx context.Context, entry *domain.ContactEntry) {
	n.contacts = append(n.contacts, entry)
}

func (n *recordingNotifier) NewsletterSubscribed(ctx context.Context, sub *domain.Subscriber, created bool) {
	n.subscribed = append(n.subscribed, sub)
	n.created = append(n.created, created)
}

func (n *recordingNotifier) BookingRequested(ctx context.Context, slot *domain.TimeSlot) {
	n.requested = append(n.requested, slot)
}

func (n *recordingNotifier) BookingDecided(ctx context.Context, slot *domain.TimeSlot) {
	n.decided = append(n.decided, slot)
}

// fakeContactRepo is an in-memory ContactRepository.
type fakeContactRepo struct {
	entries []*domain.ContactEntry
	err     error
}

func (f *fakeContactRepo) Create(ctx context.Context, e *domain.ContactEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeContactRepo) List(ctx context.Context) ([]*domain.ContactEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

// fakeSubscriberRepo is an in-memory SubscriberRepository keyed by email.
type fakeSubscriberRepo struct {
	byEmail   map[string]*domain.Subscriber
	err       error
	lastSince time.Time
	statusSet int
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{byEmail: make(map[string]*domain.Subscriber)}
}

func (f *fakeSubscriberRepo) Upsert(ctx context.Context, s *domain.Subscriber) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	existing, ok := f.byEmail[s.Email]
	if ok && existing.Status == domain.SubscriberActive {
		s.SubscribedAt = existing.SubscribedAt
	}
	cp := *s
	f.byEmail[s.Email] = &cp
	return !ok, nil
}

func (f *fakeSubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.byEmail[email]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriberRepo) List(ctx context.Context, query string) ([]*domain.Subscriber, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Subscriber{}
	for _, s := range f.byEmail {
		if query == "" || strings.Contains(strings.ToLower(s.Email+" "+s.FirstName+" "+s.LastName), strings.ToLower(query)) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubscribedAt.After(out[j].SubscribedAt) })
	return out, nil
}

func (f *fakeSubscriberRepo) Stats(ctx context.Context, since time.Time) (*domain.SubscriberStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastSince = since
	stats := &domain.SubscriberStats{}
	for _, s := range f.byEmail {
		if s.Status != domain.SubscriberActive {
			continue
		}
		stats.Total++
		if !s.SubscribedAt.Before(since) {
			stats.ThisMonth++
		}
	}
	return stats, nil
}

func (f *fakeSubscriberRepo) SetStatus(ctx context.Context, email, status string) error {
	if f.err != nil {
		return f.err
	}
	s, ok := f.byEmail[email]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	f.statusSet++
	return nil
}

func (f *fakeSubscriberRepo) Delete(ctx context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[email]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byEmail, email)
	return nil
}

// fakeSlotRepo is an in-memory SlotRepository with the same conditional semantics as Postgres.
type fakeSlotRepo struct {
	byID map[string]*domain.TimeSlot
	err  error
}

func newFakeSlotRepo(slots ...*domain.TimeSlot) *fakeSlotRepo {
	f := &fakeSlotRepo{byID: make(map[string]*domain.TimeSlot)}
	for _, s := range slots {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSlotRepo) CreateMany(ctx context.Context, slots []*domain.TimeSlot) ([]*domain.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := []*domain.TimeSlot{}
	for _, s := range slots {
		taken := false
		for _, existing := range f.byID {
			if existing.Date == s.Date && existing.Time == s.Time {
				taken = true
				break
			}
		}
		if !taken {
			f.byID[s.ID] = s
			created = append(created, s)
		}
	}
	return created, nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSlotRepo) List(ctx context.Context) ([]*domain.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(*domain.TimeSlot) bool { return true }), nil
}

func (f *fakeSlotRepo) ListAvailableFrom(ctx context.Context, date string) ([]*domain.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(s *domain.TimeSlot) bool {
		return s.Status == domain.SlotAvailable && s.Date >= date
	}), nil
}

func (f *fakeSlotRepo) Book(ctx context.Context, id string, b *domain.Booking) (*domain.TimeSlot, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.Status != domain.SlotAvailable {
		return nil, domain.ErrSlotUnavailable
	}
	s.Status = domain.SlotPending
	s.Booking = b
	return s, nil
}

func (f *fakeSlotRepo) Transition(ctx context.Context, id, from, to string) (*domain.TimeSlot, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	s.Status = to
	return s, nil
}

func (f *fakeSlotRepo) DeleteAvailable(ctx context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != domain.SlotAvailable {
		return domain.ErrSlotNotDeletable
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSlotRepo) sorted(keep func(*domain.TimeSlot) bool) []*domain.TimeSlot {
	out := []*domain.TimeSlot{}
	for _, s := range f.byID {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date+out[i].Time < out[j].Date+out[j].Time
	})
	return out
}

// fakeMailer records sent messages.
type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.OutgoingEmail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg domain.OutgoingEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) byTemplate() map[string]domain.OutgoingEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.OutgoingEmail)
	for _, msg := range m.sent {
		out[msg.Subject] = msg
	}
	return out
}

// stubRenderer uses the template name as the subject.
type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(name string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	return name, "<p>" + name + "</p>", name, nil
}
