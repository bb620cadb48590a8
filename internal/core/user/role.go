package user

import "fmt"

// Role is the organizational role of an identity. Privilege comparisons go
// through the explicit rank table below, never through string ordering.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleRank is the single source of truth for "at least as privileged as".
var roleRank = map[Role]int{
	RoleEmployee:   0,
	RoleAccountant: 1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Rank returns the numeric rank of the role, or -1 for unknown roles so that
// an unrecognized value never satisfies any requirement.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r is at least as privileged as min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank() && r.Rank() >= 0
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Roles returns all roles ordered from lowest to highest rank.
func Roles() []Role {
	return []Role{RoleEmployee, RoleAccountant, RoleManager, RoleAdmin, RoleSuperAdmin}
}
