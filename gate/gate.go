// Package gate decides whether a role-scoped view may render for the
// current session state.
package gate

import (
	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/models"
	"github.com/octabyte/alumni-portal/session"
)

const LoginRoute = "/login"

type Verdict int

const (
	// Loading means identity is still unknown. No redirect may be issued.
	Loading Verdict = iota
	Authorized
	Denied
)

func (v Verdict) String() string {
	switch v {
	case Loading:
		return "LOADING"
	case Authorized:
		return "AUTHORIZED"
	case Denied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

type Decision struct {
	Verdict Verdict
	// Redirect is set only for Denied.
	Redirect string
}

// Evaluate gates a view that requires role. A role mismatch is treated
// like an anonymous visitor and sent to the login view.
func Evaluate(state session.State, required enums.Role) Decision {
	switch {
	case state.Resolving:
		return Decision{Verdict: Loading}
	case state.User == nil:
		return Decision{Verdict: Denied, Redirect: LoginRoute}
	case state.User.Role != required:
		return Decision{Verdict: Denied, Redirect: LoginRoute}
	default:
		return Decision{Verdict: Authorized}
	}
}

// DashboardRoute is the landing route of user's role, or the login view.
func DashboardRoute(user *models.User) string {
	if user == nil {
		return LoginRoute
	}
	return LandingRoute(user.Role)
}

func LandingRoute(role enums.Role) string {
	switch role {
	case enums.RoleGraduate:
		return "/graduate/profile"
	case enums.RoleEmployer:
		return "/employer/dashboard"
	case enums.RoleAdmin:
		return "/admin/dashboard"
	default:
		return LoginRoute
	}
}
