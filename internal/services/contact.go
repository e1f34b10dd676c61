package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"coachingsite/internal/domain"
)

type contactService struct {
	repo     domain.ContactRepository
	notifier domain.Notifier
	now      func() time.Time
}

// NewContactService returns a ContactService that stores entries and notifies the admin and the visitor.
func NewContactService(repo domain.ContactRepository, notifier domain.Notifier) domain.ContactService {
	return &contactService{repo: repo, notifier: notifier, now: time.Now}
}

func (s *contactService) Submit(ctx context.Context, entry *domain.ContactEntry) error {
	entry.ID = uuid.NewString()
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Email = normalizeEmail(entry.Email)
	entry.Message = strings.TrimSpace(entry.Message)
	entry.Situation = strings.TrimSpace(entry.Situation)
	entry.Goal = strings.TrimSpace(entry.Goal)
	entry.SelectedPackage = strings.TrimSpace(entry.SelectedPackage)
	entry.ReceivedAt = timestamp(s.now)

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("store contact entry: %w", err)
	}
	s.notifier.ContactReceived(ctx, entry)
	return nil
}

func (s *contactService) List(ctx context.Context) ([]*domain.ContactEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contact entries: %w", err)
	}
	return entries, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// timestamp returns now in UTC at the microsecond precision Postgres stores, so a value
// handed back to the caller equals the one later read from the database.
func timestamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
