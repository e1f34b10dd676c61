package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachingsite/internal/domain"
)

type newsletterService struct {
	repo     domain.SubscriberRepository
	notifier domain.Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewNewsletterService returns a NewsletterService. loc decides where a calendar month starts for Stats.
func NewNewsletterService(repo domain.SubscriberRepository, notifier domain.Notifier, loc *time.Location) domain.NewsletterService {
	if loc == nil {
		loc = time.UTC
	}
	return &newsletterService{repo: repo, notifier: notifier, loc: loc, now: time.Now}
}

// Subscribe upserts by lowercased email. Submitting the same address again updates the record
// and reactivates it.
func (s *newsletterService) Subscribe(ctx context.Context, sub *domain.Subscriber) (bool, error) {
	sub.Email = normalizeEmail(sub.Email)
	sub.Gender = strings.TrimSpace(sub.Gender)
	sub.FirstName = strings.TrimSpace(sub.FirstName)
	sub.LastName = strings.TrimSpace(sub.LastName)
	sub.Zip = strings.TrimSpace(sub.Zip)
	sub.Source = strings.TrimSpace(sub.Source)
	if sub.Source == "" {
		sub.Source = domain.DefaultSubscriberSource
	}
	sub.Status = domain.SubscriberActive
	sub.SubscribedAt = timestamp(s.now)

	created, err := s.repo.Upsert(ctx, sub)
	if err != nil {
		return false, fmt.Errorf("upsert subscriber: %w", err)
	}
	s.notifier.NewsletterSubscribed(ctx, sub, created)
	return created, nil
}

// Unsubscribe marks the address unsubscribed. Unknown addresses are not an error so the
// response does not reveal who is on the list.
// Unsubscribe marks the subscriber unsubscribed. Unknown and already unsubscribed addresses
// succeed without a write.
func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	sub, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if sub.Status == domain.SubscriberUnsubscribed {
		return nil
	}
	err = s.repo.SetStatus(ctx, email, domain.SubscriberUnsubscribed)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (s *newsletterService) List(ctx context.Context, query string) ([]*domain.Subscriber, error) {
	subs, err := s.repo.List(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

func (s *newsletterService) Stats(ctx context.Context) (*domain.SubscriberStats, error) {
	now := s.now().In(s.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	stats, err := s.repo.Stats(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("subscriber stats: %w", err)
	}
	return stats, nil
}

func (s *newsletterService) Delete(ctx context.Context, email string) error {
	if err := s.repo.Delete(ctx, normalizeEmail(email)); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}
