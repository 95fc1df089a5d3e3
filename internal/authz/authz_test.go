package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trailbook/backend/internal/models"
)

func TestEvaluate(t *testing.T) {
	companyA := uuid.New()
	companyB := uuid.New()

	admin := &models.User{ID: uuid.New(), Role: models.RoleAdministrator}
	ownerA := &models.User{ID: uuid.New(), Role: models.RoleCompanyOwner, CompanyID: &companyA}
	ownerNoCompany := &models.User{ID: uuid.New(), Role: models.RoleCompanyOwner}
	customer := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	guideA := &models.User{ID: uuid.New(), Role: models.RoleGuide, CompanyID: &companyA}

	targetA := &models.Company{ID: companyA}
	targetB := &models.Company{ID: companyB}

	tests := []struct {
		name     string
		actor    *models.User
		action   Action
		target   CompanyScoped
		expected Effect
	}{
		{
			name:     "administrator may act on any company",
			actor:    admin,
			action:   ActionDelete,
			target:   targetB,
			expected: Allow,
		},
		{
			name:     "administrator may act without a target",
			actor:    admin,
			action:   ActionViewAny,
			target:   nil,
			expected: Allow,
		},
		{
			name:     "owner may act on own company",
			actor:    ownerA,
			action:   ActionUpdate,
			target:   targetA,
			expected: Allow,
		},
		{
			name:     "owner may not act on another company",
			actor:    ownerA,
			action:   ActionUpdate,
			target:   targetB,
			expected: Deny,
		},
		{
			name:     "owner without a company is denied",
			actor:    ownerNoCompany,
			action:   ActionViewAny,
			target:   targetA,
			expected: Deny,
		},
		{
			name:     "customer is denied",
			actor:    customer,
			action:   ActionViewAny,
			target:   targetA,
			expected: Deny,
		},
		{
			name:     "guide is denied even for own company",
			actor:    guideA,
			action:   ActionUpdate,
			target:   targetA,
			expected: Deny,
		},
		{
			name:     "anonymous actor is denied",
			actor:    nil,
			action:   ActionViewAny,
			target:   targetA,
			expected: Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Evaluate(tt.actor, tt.action, tt.target))
		})
	}
}

func TestEvaluateCompanyScopedActivity(t *testing.T) {
	companyA := uuid.New()
	ownerA := &models.User{ID: uuid.New(), Role: models.RoleCompanyOwner, CompanyID: &companyA}

	activity := &models.Activity{ID: uuid.New(), CompanyID: companyA}
	require.True(t, Allowed(ownerA, ActionUpdate, activity))

	otherCompany := uuid.New()
	foreign := &models.Activity{ID: uuid.New(), CompanyID: otherCompany}
	require.False(t, Allowed(ownerA, ActionUpdate, foreign))
}

func TestActionString(t *testing.T) {
	require.Equal(t, "viewAny", ActionViewAny.String())
	require.Equal(t, "create", ActionCreate.String())
	require.Equal(t, "update", ActionUpdate.String())
	require.Equal(t, "delete", ActionDelete.String())
}
