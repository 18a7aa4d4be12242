package enums

import (
	"fmt"
	"strings"
)

type Role string

// Wire values used by the REST API. Graduates are "ALUMNI" on the wire.
const (
	RoleGraduate Role = "ALUMNI"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts the API's wire values, the portal's route slugs and the
// GRADUATE alias, case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALUMNI", "GRADUATE":
		return RoleGraduate, true
	case "EMPLOYER":
		return RoleEmployer, true
	case "ADMIN":
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	return r == RoleGraduate || r == RoleEmployer || r == RoleAdmin
}

// Slug is the route prefix of the role's subtree.
func (r Role) Slug() string {
	switch r {
	case RoleGraduate:
		return "graduate"
	case RoleEmployer:
		return "employer"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

// SelfRegistrable reports whether accounts of this role may sign up on their own.
func (r Role) SelfRegistrable() bool {
	return r == RoleGraduate || r == RoleEmployer
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, ok := ParseRole(string(text))
	if !ok {
		return fmt.Errorf("unknown role %q", string(text))
	}
	*r = parsed
	return nil
}
