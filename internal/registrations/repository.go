package registrations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
)

// Repository handles the activity participation relation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Attach registers the user as a participant. The composite primary key makes
// a concurrent duplicate surface as database.ErrUniqueViolation, so exactly
// one of two simultaneous attempts succeeds.
func (r *Repository) Attach(ctx context.Context, activityID, userID uuid.UUID) error {
	const q = `INSERT INTO activity_participants (activity_id, user_id) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, q, activityID, userID)
	return database.MapError(err)
}

// Detach removes the user's participation. Returns false when the user was
// not a participant.
func (r *Repository) Detach(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	const q = `DELETE FROM activity_participants WHERE activity_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, q, activityID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsParticipant reports whether the user is registered to the activity.
func (r *Repository) IsParticipant(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM activity_participants WHERE activity_id = $1 AND user_id = $2)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, activityID, userID).Scan(&ok)
	return ok, err
}

// ListForUser returns the user's registered activities ordered by start time.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Activity, error) {
	const q = `SELECT a.id, a.company_id, a.guide_id, a.name, a.description, a.start_time, a.price_cents, COALESCE(a.photo, ''), a.created_at, a.updated_at
		FROM activities a
		INNER JOIN activity_participants ap ON ap.activity_id = a.id
		WHERE ap.user_id = $1
		ORDER BY a.start_time`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.GuideID, &a.Name, &a.Description, &a.StartTime, &a.PriceCents, &a.Photo, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
