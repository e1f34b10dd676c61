package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coachingsite/internal/domain"
)

type slotRepository struct {
	DB *sql.DB
}

// NewSlotRepository returns a domain.SlotRepository implemented with Postgres.
func NewSlotRepository(db *sql.DB) domain.SlotRepository {
	return &slotRepository{DB: db}
}

const slotColumns = `id, date, time, duration, status, booking_name, booking_email, booking_phone, booking_message, booking_contact_type, booked_at, created_at`

func (r *slotRepository) CreateMany(ctx context.Context, slots []*domain.TimeSlot) (created []*domain.TimeSlot, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO time_slots (id, date, time, duration, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, time) DO NOTHING
	`
	created = []*domain.TimeSlot{}
	for _, s := range slots {
		result, err := tx.ExecContext(ctx, query, s.ID, s.Date, s.Time, s.Duration, s.Status, s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert slot %s %s: %w", s.Date, s.Time, err)
		}
		if n, _ := result.RowsAffected(); n == 1 {
			created = append(created, s)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	slot, err := scanSlot(r.DB.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (r *slotRepository) List(ctx context.Context) ([]*domain.TimeSlot, error) {
	return r.query(ctx, `SELECT `+slotColumns+` FROM time_slots ORDER BY date, time`)
}

func (r *slotRepository) ListAvailableFrom(ctx context.Context, date string) ([]*domain.TimeSlot, error) {
	return r.query(ctx, `SELECT `+slotColumns+` FROM time_slots WHERE status = 'available' AND date >= $1 ORDER BY date, time`, date)
}

func (r *slotRepository) Book(ctx context.Context, id string, b *domain.Booking) (*domain.TimeSlot, error) {
	query := `
		UPDATE time_slots
		SET status = 'pending', booking_name = $2, booking_email = $3, booking_phone = $4,
			booking_message = $5, booking_contact_type = $6, booked_at = $7
		WHERE id = $1 AND status = 'available'
		RETURNING ` + slotColumns
	slot, err := scanSlot(r.DB.QueryRowContext(ctx, query, id, b.Name, b.Email, b.Phone, b.Message, b.ContactType, b.BookedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missOrConflict(ctx, id, domain.ErrSlotUnavailable)
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *slotRepository) Transition(ctx context.Context, id, from, to string) (*domain.TimeSlot, error) {
	query := `UPDATE time_slots SET status = $3 WHERE id = $1 AND status = $2 RETURNING ` + slotColumns
	slot, err := scanSlot(r.DB.QueryRowContext(ctx, query, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missOrConflict(ctx, id, domain.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *slotRepository) DeleteAvailable(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1 AND status = 'available'`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return r.missOrConflict(ctx, id, domain.ErrSlotNotDeletable)
	}
	return nil
}

// missOrConflict tells a missing slot apart from one whose status did not match the
// conditional write: it returns ErrNotFound or conflict respectively.
func (r *slotRepository) missOrConflict(ctx context.Context, id string, conflict error) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM time_slots WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return conflict
}

func (r *slotRepository) query(ctx context.Context, query string, args ...any) ([]*domain.TimeSlot, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []*domain.TimeSlot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func scanSlot(row rowScanner) (*domain.TimeSlot, error) {
	var (
		s                                    domain.TimeSlot
		name, email, phone, msg, contactType sql.NullString
		bookedAt                             sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.Date, &s.Time, &s.Duration, &s.Status, &name, &email, &phone, &msg, &contactType, &bookedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	if bookedAt.Valid {
		s.Booking = &domain.Booking{
			Name:        name.String,
			Email:       email.String,
			Phone:       phone.String,
			Message:     msg.String,
			ContactType: contactType.String,
			BookedAt:    bookedAt.Time.UTC(),
		}
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
