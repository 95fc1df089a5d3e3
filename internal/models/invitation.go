package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation binds an email address to a future role and company through a
// single-use token. RegisteredAt nil means the invitation is still pending;
// once set the invitation is consumed and cannot be used again.
type Invitation struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Token        string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyID    uuid.UUID  `json:"company_id"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Pending reports whether the invitation has not been consumed yet.
func (i *Invitation) Pending() bool { return i.RegisteredAt == nil }
