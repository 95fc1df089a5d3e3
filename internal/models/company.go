package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant that owns staff accounts and activities.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy implements authz.CompanyScoped: a company scopes to itself.
func (c *Company) OwnedBy() uuid.UUID { return c.ID }
