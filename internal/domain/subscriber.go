package domain

import (
	"context"
	"time"
)

// Subscription statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// Salutations accepted for Subscriber.Gender.
var Salutations = []string{"Herr", "Frau", "Divers"}

// DefaultSubscriberSource is recorded when a signup does not name its origin.
const DefaultSubscriberSource = "website"

// Subscriber is a newsletter recipient keyed by lowercased email.
// swagger:model Subscriber
type Subscriber struct {
	Gender       string    `json:"gender"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	BirthYear    int       `json:"birthYear"`
	Zip          string    `json:"zip"`
	Source       string    `json:"source"`
	SubscribedAt time.Time `json:"subscribedAt"`
	Status       string    `json:"status"`
}

// SubscriberStats summarises active subscriptions.
type SubscriberStats struct {
	Total     int `json:"total"`
	ThisMonth int `json:"thisMonth"`
}

// SubscriberRepository defines storage for subscribers.
type SubscriberRepository interface {
	// Upsert inserts the subscriber or overwrites the existing row with the same email.
	// created reports whether a new row was inserted. SubscribedAt is updated to the stored value.
	Upsert(ctx context.Context, sub *Subscriber) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	// List returns subscribers ordered by SubscribedAt descending. A non-empty query filters
	// case-insensitively on email, first name and last name.
	List(ctx context.Context, query string) ([]*Subscriber, error)
	Stats(ctx context.Context, since time.Time) (*SubscriberStats, error)
	SetStatus(ctx context.Context, email, status string) error
	Delete(ctx context.Context, email string) error
}

// NewsletterService defines newsletter signup and management.
type NewsletterService interface {
	Subscribe(ctx context.Context, sub *Subscriber) (created bool, err error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, query string) ([]*Subscriber, error)
	Stats(ctx context.Context) (*SubscriberStats, error)
	Delete(ctx context.Context, email string) error
}
