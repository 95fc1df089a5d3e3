// Package maillog persists the audit trail of outbound email deliveries.
package maillog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
)

// Repository writes email delivery records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a mail log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordSent logs a successful delivery.
func (r *Repository) RecordSent(ctx context.Context, emailType, recipient, subject string) error {
	const q = `INSERT INTO email_logs (email_type, recipient_email, subject, status, sent_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, emailType, recipient, subject, models.EmailLogStatusSent, time.Now())
	return database.MapError(err)
}

// RecordFailed logs a delivery failure with the error message.
func (r *Repository) RecordFailed(ctx context.Context, emailType, recipient, subject, errMsg string) error {
	const q = `INSERT INTO email_logs (email_type, recipient_email, subject, status, error_message)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, emailType, recipient, subject, models.EmailLogStatusFailed, errMsg)
	return database.MapError(err)
}

// ListRecent returns the latest delivery records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.EmailLog, error) {
	const q = `SELECT id, email_type, recipient_email, COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.EmailType, &l.RecipientEmail, &l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
