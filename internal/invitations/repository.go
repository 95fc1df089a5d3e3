package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
)

// Repository handles invitation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending invitation. The partial unique index on pending
// emails surfaces a concurrent duplicate as database.ErrUniqueViolation.
func (r *Repository) Create(ctx context.Context, inv *models.Invitation) error {
	const q = `INSERT INTO invitations (email, token, role_id, company_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, registered_at, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, inv.Email, inv.Token, inv.Role, inv.CompanyID).
		Scan(&inv.ID, &inv.RegisteredAt, &inv.CreatedAt, &inv.UpdatedAt)
	return database.MapError(err)
}

// GetPendingByToken returns the pending invitation with this token, used to
// prefill the registration form.
func (r *Repository) GetPendingByToken(ctx context.Context, token string) (*models.Invitation, error) {
	const q = `SELECT id, email, token, role_id, company_id, registered_at, created_at, updated_at
		FROM invitations WHERE token = $1 AND registered_at IS NULL`
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, q, token).
		Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Role, &inv.CompanyID, &inv.RegisteredAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	return &inv, nil
}

// Consume marks the pending invitation matching both token and email as
// consumed in a single statement, so a token can only ever be consumed once.
// Returns database.ErrNotFound when no pending row matches both values.
func (r *Repository) Consume(ctx context.Context, token, email string, now time.Time) (*models.Invitation, error) {
	const q = `UPDATE invitations SET registered_at = $3, updated_at = $3
		WHERE token = $1 AND email = $2 AND registered_at IS NULL
		RETURNING id, email, token, role_id, company_id, registered_at, created_at, updated_at`
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, q, token, email, now).
		Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Role, &inv.CompanyID, &inv.RegisteredAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	return &inv, nil
}

// ListByCompany returns a company's invitations, newest first.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Invitation, error) {
	const q = `SELECT id, email, token, role_id, company_id, registered_at, created_at, updated_at
		FROM invitations WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Role, &inv.CompanyID, &inv.RegisteredAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
