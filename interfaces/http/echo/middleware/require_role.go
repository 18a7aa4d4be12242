package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/gate"
	"github.com/octabyte/alumni-portal/otel/metrics"
	"github.com/octabyte/alumni-portal/session"
)

// LoadingPage is rendered while identity is still unknown. It asks the
// browser to come back shortly instead of redirecting.
const LoadingPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p class="loading">Loading...</p></body></html>`

// RequireRole gates a route subtree on the visitor's role.
func RequireRole(role enums.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// No session in context is treated as anonymous.
			state := session.State{}
			if s := GetSession(c); s != nil {
				state = s.State()
			}

			decision := gate.Evaluate(state, role)
			metrics.RecordGateVerdict(c.Request().Context(), role.Slug(), decision.Verdict.String())

			switch decision.Verdict {
			case gate.Authorized:
				return next(c)
			case gate.Loading:
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				return c.HTML(http.StatusOK, LoadingPage)
			default:
				return c.Redirect(http.StatusSeeOther, decision.Redirect)
			}
		}
	}
}
