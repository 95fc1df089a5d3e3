package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Activity is a bookable event published by a company. The price is persisted
// in integer cents and exposed to API callers as a decimal major-currency value.
type Activity struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	GuideID     *uuid.UUID `json:"guide_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	PriceCents  int64      `json:"-"`
	Photo       string     `json:"photo,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Price returns the displayed decimal price (cents / 100).
func (a *Activity) Price() float64 {
	return float64(a.PriceCents) / 100
}

// SetPrice stores a displayed decimal price as cents, rounding to the nearest cent.
func (a *Activity) SetPrice(displayed float64) {
	a.PriceCents = PriceToCents(displayed)
}

// PriceToCents converts a displayed decimal price to integer cents,
// rounding to the nearest cent.
func PriceToCents(displayed float64) int64 {
	return int64(math.Round(displayed * 100))
}

// OwnedBy implements authz.CompanyScoped.
func (a *Activity) OwnedBy() uuid.UUID { return a.CompanyID }

// Participant is a user registered to an activity, ordered by registration time.
type Participant struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}
