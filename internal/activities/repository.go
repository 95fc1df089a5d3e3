package activities

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
)

// Repository handles activity persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an activities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `id, company_id, guide_id, name, description, start_time, price_cents, COALESCE(photo, ''), created_at, updated_at`

func scanActivity(row interface{ Scan(...any) error }) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(&a.ID, &a.CompanyID, &a.GuideID, &a.Name, &a.Description, &a.StartTime, &a.PriceCents, &a.Photo, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	return &a, nil
}

// GetByID returns an activity by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	return scanActivity(r.pool.QueryRow(ctx, q, id))
}

// ListUpcoming returns future activities ascending by start time, with the
// total count of future activities for pagination.
func (r *Repository) ListUpcoming(ctx context.Context, limit, offset int) ([]models.Activity, int, error) {
	const countQ = `SELECT COUNT(*) FROM activities WHERE start_time > NOW()`
	var total int
	if err := r.pool.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `SELECT ` + activityColumns + ` FROM activities
		WHERE start_time > NOW()
		ORDER BY start_time
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list, err := collect(rows)
	return list, total, err
}

// ListByCompany returns a company's activities ascending by start time. The
// company filter is the result-set side of the company-scoping rule: owners
// only ever see their own company's rows.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE company_id = $1 ORDER BY start_time`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByGuide returns activities assigned to the guide ascending by start time.
func (r *Repository) ListByGuide(ctx context.Context, guideID uuid.UUID) ([]models.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE guide_id = $1 ORDER BY start_time`
	rows, err := r.pool.Query(ctx, q, guideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Create inserts an activity.
func (r *Repository) Create(ctx context.Context, a *models.Activity) error {
	const q = `INSERT INTO activities (company_id, guide_id, name, description, start_time, price_cents, photo)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.CompanyID, a.GuideID, a.Name, a.Description, a.StartTime, a.PriceCents, a.Photo).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return database.MapError(err)
}

// Update writes the activity's mutable fields and returns the previous photo
// filename so the caller can delete replaced files after the commit.
func (r *Repository) Update(ctx context.Context, a *models.Activity) (oldPhoto string, err error) {
	const q = `UPDATE activities SET
			guide_id = $2, name = $3, description = $4, start_time = $5, price_cents = $6,
			photo = NULLIF($7, ''), updated_at = NOW()
		FROM (SELECT COALESCE(photo, '') AS photo FROM activities WHERE id = $1) prev
		WHERE activities.id = $1
		RETURNING prev.photo, activities.updated_at`
	err = r.pool.QueryRow(ctx, q, a.ID, a.GuideID, a.Name, a.Description, a.StartTime, a.PriceCents, a.Photo).
		Scan(&oldPhoto, &a.UpdatedAt)
	if err != nil {
		return "", database.MapError(err)
	}
	return oldPhoto, nil
}

// Delete removes an activity and returns its photo filename (empty when none)
// so the caller can delete the stored files after the commit.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (photo string, err error) {
	const q = `DELETE FROM activities WHERE id = $1 RETURNING COALESCE(photo, '')`
	err = r.pool.QueryRow(ctx, q, id).Scan(&photo)
	if err != nil {
		return "", database.MapError(err)
	}
	return photo, nil
}

// Participants returns the activity's participants ordered by registration time.
func (r *Repository) Participants(ctx context.Context, activityID uuid.UUID) ([]models.Participant, error) {
	const q = `SELECT u.id, u.name, u.email, ap.created_at
		FROM activity_participants ap
		INNER JOIN users u ON u.id = ap.user_id
		WHERE ap.activity_id = $1
		ORDER BY ap.created_at`
	rows, err := r.pool.Query(ctx, q, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.RegisteredAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(...any) error
	Err() error
}

func collect(rows rowScanner) ([]models.Activity, error) {
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
