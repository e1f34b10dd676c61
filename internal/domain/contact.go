package domain

import (
	"context"
	"time"
)

// ContactEntry is one submission of the contact form. Entries are append-only.
// swagger:model ContactEntry
type ContactEntry struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Message         string    `json:"message"`
	Situation       string    `json:"situation,omitempty"`
	Goal            string    `json:"goal,omitempty"`
	SelectedPackage string    `json:"selectedPackage,omitempty"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

// ContactRepository defines storage for contact entries.
type ContactRepository interface {
	Create(ctx context.Context, entry *ContactEntry) error
	List(ctx context.Context) ([]*ContactEntry, error)
}

// ContactService handles contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, entry *ContactEntry) error
	List(ctx context.Context) ([]*ContactEntry, error)
}
