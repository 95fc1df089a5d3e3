// Package authz decides whether an acting user may perform an action on a
// company-scoped resource. Decisions depend only on the explicit inputs, so
// every rule is directly testable.
package authz

import (
	"github.com/google/uuid"

	"github.com/trailbook/backend/internal/models"
)

// Action is what the actor wants to do with the target's resources.
type Action int

const (
	ActionViewAny Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionViewAny:
		return "viewAny"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Effect is the outcome of a policy evaluation.
type Effect int

const (
	Deny Effect = iota
	Allow
)

// CompanyScoped is any entity owned by a company. A Company scopes to itself,
// an Activity to its owning company.
type CompanyScoped interface {
	OwnedBy() uuid.UUID
}

type request struct {
	actor  *models.User
	action Action
	target CompanyScoped
}

// rule pairs a predicate with an effect. Rules are evaluated in order and the
// first matching rule wins.
type rule struct {
	when   func(request) bool
	effect Effect
}

// The administrator override is always the first rule.
var rules = []rule{
	{when: actorIsAdministrator, effect: Allow},
	{when: actorOwnsTargetCompany, effect: Allow},
}

func actorIsAdministrator(r request) bool {
	return r.actor.Role == models.RoleAdministrator
}

func actorOwnsTargetCompany(r request) bool {
	return r.actor.Role == models.RoleCompanyOwner &&
		r.actor.CompanyID != nil &&
		r.target != nil &&
		*r.actor.CompanyID == r.target.OwnedBy()
}

// Evaluate returns Allow or Deny for the actor performing the action on the
// target. A nil (anonymous) actor is always denied.
func Evaluate(actor *models.User, action Action, target CompanyScoped) Effect {
	if actor == nil {
		return Deny
	}
	req := request{actor: actor, action: action, target: target}
	for _, r := range rules {
		if r.when(req) {
			return r.effect
		}
	}
	return Deny
}

// Allowed is shorthand for Evaluate(...) == Allow.
func Allowed(actor *models.User, action Action, target CompanyScoped) bool {
	return Evaluate(actor, action, target) == Allow
}
