package auth

import "strings"

// Role is the closed set of account roles. The reference data carries
// free-form strings; parsing funnels every value through this enum so role
// checks are exhaustive.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHR      Role = "hr"
	RoleManager Role = "manager"
	RoleHead    Role = "head"
	RoleMD      Role = "md"
	RoleStaff   Role = "staff"
	RoleUser    Role = "user"

	RoleUnknown Role = ""
)

var roleNames = map[string]Role{
	"admin":   RoleAdmin,
	"hr":      RoleHR,
	"manager": RoleManager,
	"head":    RoleHead,
	"md":      RoleMD,
	"staff":   RoleStaff,
	"user":    RoleUser,
}

// ParseRole maps a stored role string to its Role, case-insensitively.
// Unrecognized values yield RoleUnknown.
func ParseRole(value string) Role {
	if role, ok := roleNames[strings.ToLower(strings.TrimSpace(value))]; ok {
		return role
	}
	return RoleUnknown
}

func (r Role) Valid() bool {
	return r != RoleUnknown
}

// Elevated reports whether the role alone grants back-office privileges,
// independent of any department rank.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleHR
}

func (r Role) String() string {
	return string(r)
}
