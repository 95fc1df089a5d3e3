package models

import "fmt"

// Role identifies what a user is allowed to do on the platform.
// The numeric values are persisted on users and invitations rows and must not change.
type Role int

const (
	RoleAdministrator Role = 1
	RoleCompanyOwner  Role = 2
	RoleCustomer      Role = 3
	RoleGuide         Role = 4
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleCompanyOwner, RoleCustomer, RoleGuide:
		return true
	}
	return false
}

// RequiresCompany reports whether the role only makes sense attached to a company.
func (r Role) RequiresCompany() bool {
	return r == RoleCompanyOwner || r == RoleGuide
}

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleCompanyOwner:
		return "company_owner"
	case RoleCustomer:
		return "customer"
	case RoleGuide:
		return "guide"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a role name back to its Role value.
func ParseRole(s string) (Role, error) {
	switch s {
	case "administrator":
		return RoleAdministrator, nil
	case "company_owner":
		return RoleCompanyOwner, nil
	case "customer":
		return RoleCustomer, nil
	case "guide":
		return RoleGuide, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
