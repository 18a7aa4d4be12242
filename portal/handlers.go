package portal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/gate"
	"github.com/octabyte/alumni-portal/interfaces/http/echo/middleware"
	otelLogger "github.com/octabyte/alumni-portal/otel/logger"
	"github.com/octabyte/alumni-portal/session"
)

const msgUnavailable = "The service is temporarily unavailable. Please try again."

// state is the visitor's resolved session; anonymous outside the session middleware.
func state(c echo.Context) session.State {
	if s := middleware.GetSession(c); s != nil {
		return s.State()
	}
	return session.State{}
}

func (s *Server) render(c echo.Context, status int, name string, p page) error {
	p.User = state(c).User
	p.CSRF, _ = c.Get(csrfField).(string)
	return c.Render(status, name, p)
}

// client is the visitor's REST client. The session middleware always sets it
// on routes that reach a handler.
func client(c echo.Context) (*api.Client, error) {
	cl := middleware.GetAPIClient(c)
	if cl == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "no api client in context")
	}
	return cl, nil
}

// apiFailure handles an error of a data page call. A rejected credential
// ends the session and silently redirects to the login view. Other failures
// keep the visitor on the page with an inline message.
func (s *Server) apiFailure(c echo.Context, err error, name string, p page) error {
	ctx := c.Request().Context()
	if api.IsUnauthorized(err) {
		otelLogger.InfoCtx(ctx, "api rejected session credential", zap.String("path", c.Path()), zap.Error(err))
		if sess := middleware.GetSession(c); sess != nil {
			_ = sess.Logout(ctx)
		}
		return c.Redirect(http.StatusSeeOther, gate.LoginRoute)
	}

	otelLogger.WarnCtx(ctx, "api call failed", zap.String("path", c.Path()), zap.Error(err))
	status := http.StatusBadGateway
	p.Error = msgUnavailable
	if code := api.StatusCode(err); code >= 400 && code < 500 {
		status = code
		if detail := api.Detail(err); detail != "" {
			p.Error = detail
		}
	}
	return s.render(c, status, name, p)
}

func (s *Server) home(c echo.Context) error {
	return s.render(c, http.StatusOK, "home", page{Title: "Welcome"})
}

func (s *Server) dashboard(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, gate.DashboardRoute(state(c).User))
}

type sessionView struct {
	Authenticated bool        `json:"authenticated"`
	Resolving     bool        `json:"resolving"`
	User          interface{} `json:"user"`
	Dashboard     string      `json:"dashboard"`
}

func (s *Server) sessionState(c echo.Context) error {
	st := state(c)
	view := sessionView{
		Authenticated: st.Authenticated(),
		Resolving:     st.Resolving,
		Dashboard:     gate.DashboardRoute(st.User),
	}
	if st.User != nil {
		view.User = st.User
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, view)
}
