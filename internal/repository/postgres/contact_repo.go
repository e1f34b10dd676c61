package postgres

import (
	"context"
	"database/sql"

	"coachingsite/internal/domain"
)

type contactRepository struct {
	DB *sql.DB
}

// NewContactRepository returns a domain.ContactRepository implemented with Postgres.
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{DB: db}
}

func (r *contactRepository) Create(ctx context.Context, e *domain.ContactEntry) error {
	query := `
		INSERT INTO contact_entries (id, name, email, message, situation, goal, selected_package, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, e.ID, e.Name, e.Email, e.Message, e.Situation, e.Goal, e.SelectedPackage, e.ReceivedAt)
	return err
}

func (r *contactRepository) List(ctx context.Context) ([]*domain.ContactEntry, error) {
	query := `
		SELECT id, name, email, message, situation, goal, selected_package, received_at
		FROM contact_entries
		ORDER BY received_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.ContactEntry{}
	for rows.Next() {
		e := &domain.ContactEntry{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.Situation, &e.Goal, &e.SelectedPackage, &e.ReceivedAt); err != nil {
			return nil, err
		}
		e.ReceivedAt = e.ReceivedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
