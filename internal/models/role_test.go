package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleOrdinalsAreStable(t *testing.T) {
	// These values are persisted; changing them corrupts existing rows.
	require.Equal(t, Role(1), RoleAdministrator)
	require.Equal(t, Role(2), RoleCompanyOwner)
	require.Equal(t, Role(3), RoleCustomer)
	require.Equal(t, Role(4), RoleGuide)
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdministrator, RoleCompanyOwner, RoleCustomer, RoleGuide} {
		require.True(t, r.Valid(), r.String())
	}
	require.False(t, Role(0).Valid())
	require.False(t, Role(5).Valid())
}

func TestRoleRequiresCompany(t *testing.T) {
	require.True(t, RoleCompanyOwner.RequiresCompany())
	require.True(t, RoleGuide.RequiresCompany())
	require.False(t, RoleAdministrator.RequiresCompany())
	require.False(t, RoleCustomer.RequiresCompany())
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleAdministrator, RoleCompanyOwner, RoleCustomer, RoleGuide} {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		require.Equal(t, r, parsed)
	}
	_, err := ParseRole("superuser")
	require.Error(t, err)
}
