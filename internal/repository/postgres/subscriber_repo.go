package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"coachingsite/internal/domain"
)

type subscriberRepository struct {
	DB *sql.DB
}

// NewSubscriberRepository returns a domain.SubscriberRepository implemented with Postgres.
func NewSubscriberRepository(db *sql.DB) domain.SubscriberRepository {
	return &subscriberRepository{DB: db}
}

const subscriberColumns = `email, gender, first_name, last_name, birth_year, zip, source, subscribed_at, status`

// Upsert keeps the original subscribed_at for an active subscriber; a returning
// (previously unsubscribed) subscriber starts over with the new timestamp.
func (r *subscriberRepository) Upsert(ctx context.Context, s *domain.Subscriber) (bool, error) {
	query := `
		INSERT INTO subscribers (email, gender, first_name, last_name, birth_year, zip, source, subscribed_at, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $8)
		ON CONFLICT (email) DO UPDATE
		SET gender = EXCLUDED.gender,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			birth_year = EXCLUDED.birth_year,
			zip = EXCLUDED.zip,
			source = EXCLUDED.source,
			subscribed_at = CASE WHEN subscribers.status = 'unsubscribed' THEN EXCLUDED.subscribed_at ELSE subscribers.subscribed_at END,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING subscribed_at, (xmax = 0) AS created
	`
	var created bool
	err := r.DB.QueryRowContext(ctx, query, s.Email, s.Gender, s.FirstName, s.LastName, s.BirthYear, s.Zip, s.Source, s.SubscribedAt, s.Status).
		Scan(&s.SubscribedAt, &created)
	if err != nil {
		return false, err
	}
	s.SubscribedAt = s.SubscribedAt.UTC()
	return created, nil
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE email = $1`
	s, err := scanSubscriber(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *subscriberRepository) List(ctx context.Context, search string) ([]*domain.Subscriber, error) {
	var (
		rows *sql.Rows
		err  error
	)
	search = strings.TrimSpace(search)
	if search == "" {
		rows, err = r.DB.QueryContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers ORDER BY subscribed_at DESC`)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT `+subscriberColumns+`
			FROM subscribers
			WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 OR (first_name || ' ' || last_name) ILIKE $1
			ORDER BY subscribed_at DESC`, "%"+escapeLike(search)+"%")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []*domain.Subscriber{}
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriberRepository) Stats(ctx context.Context, since time.Time) (*domain.SubscriberStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'active' AND subscribed_at >= $1)
		FROM subscribers
	`
	stats := &domain.SubscriberStats{}
	if err := r.DB.QueryRowContext(ctx, query, since).Scan(&stats.Total, &stats.ThisMonth); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *subscriberRepository) SetStatus(ctx context.Context, email, status string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE subscribers SET status = $2, updated_at = NOW() WHERE email = $1`, email, status)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriberRepository) Delete(ctx context.Context, email string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM subscribers WHERE email = $1`, email)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*domain.Subscriber, error) {
	s := &domain.Subscriber{}
	if err := row.Scan(&s.Email, &s.Gender, &s.FirstName, &s.LastName, &s.BirthYear, &s.Zip, &s.Source, &s.SubscribedAt, &s.Status); err != nil {
		return nil, err
	}
	s.SubscribedAt = s.SubscribedAt.UTC()
	return s, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
