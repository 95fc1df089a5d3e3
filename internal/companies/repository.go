package companies

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
)

// Repository handles company and staff persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a companies repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a company.
func (r *Repository) Create(ctx context.Context, company *models.Company) error {
	const q = `INSERT INTO companies (name) VALUES ($1) RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, company.Name).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	return database.MapError(err)
}

// GetByID returns a company by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`
	var company models.Company
	err := r.pool.QueryRow(ctx, q, id).Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	return &company, nil
}

// List returns all companies ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, company)
	}
	return list, rows.Err()
}

// Update renames a company.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	const q = `UPDATE companies SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, company.ID, company.Name).Scan(&company.UpdatedAt)
	return database.MapError(err)
}

// Delete removes a company. Remaining staff or activities surface as
// database.ErrForeignKeyViolation (deletion is restricted, not cascaded).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

const staffColumns = `id, name, email, role_id, company_id, created_at`

// ListStaff returns the company's users with the given role. Every staff
// query filters by company, so an owner can never observe another company's
// people through these endpoints.
func (r *Repository) ListStaff(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.UserPublic, error) {
	const q = `SELECT ` + staffColumns + ` FROM users WHERE company_id = $1 AND role_id = $2 ORDER BY name, email`
	rows, err := r.pool.Query(ctx, q, companyID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CompanyID, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetStaff returns one of the company's users by id, scoped by company.
func (r *Repository) GetStaff(ctx context.Context, companyID, userID uuid.UUID) (*models.UserPublic, error) {
	const q = `SELECT ` + staffColumns + ` FROM users WHERE id = $1 AND company_id = $2`
	var u models.UserPublic
	err := r.pool.QueryRow(ctx, q, userID, companyID).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CompanyID, &u.CreatedAt)
	if err != nil {
		return nil, database.MapError(err)
	}
	return &u, nil
}

// UpdateStaff updates name and email of a company's user, scoped by company.
func (r *Repository) UpdateStaff(ctx context.Context, companyID, userID uuid.UUID, name, email string) error {
	const q = `UPDATE users SET name = $3, email = $4, updated_at = NOW() WHERE id = $1 AND company_id = $2`
	tag, err := r.pool.Exec(ctx, q, userID, companyID, name, email)
	if err != nil {
		return database.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteStaff removes a company's user, scoped by company.
func (r *Repository) DeleteStaff(ctx context.Context, companyID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND company_id = $2`, userID, companyID)
	if err != nil {
		return database.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// IsCompanyGuide reports whether the user is a guide of the company, used to
// validate guide assignment on activities.
func (r *Repository) IsCompanyGuide(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND company_id = $2 AND role_id = $3)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, companyID, models.RoleGuide).Scan(&ok)
	return ok, err
}
