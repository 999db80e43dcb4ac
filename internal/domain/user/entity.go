package user

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold. String values are the
// canonical wire and storage representation.
type Role string

const (
	RoleEmployee    Role = "employee"
	RoleManager     Role = "manager"
	RoleAdminOffice Role = "admin_office"
)

// AllRoles returns every valid role.
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdminOffice}
}

// ParseRole maps an external string to a Role. The legacy spelling
// "admin office" is accepted on input.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "employee":
		return RoleEmployee, true
	case "manager":
		return RoleManager, true
	case "admin_office", "admin office":
		return RoleAdminOffice, true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdminOffice:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

type User struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	ReportTo  *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the authenticated caller of an operation, as asserted by the
// identity provider.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdminOffice() bool {
	return a.Role == RoleAdminOffice
}
