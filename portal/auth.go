package portal

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/gate"
	"github.com/octabyte/alumni-portal/interfaces/http/echo/middleware"
	"github.com/octabyte/alumni-portal/models"
	"github.com/octabyte/alumni-portal/session"
)

type loginData struct {
	Username string
}

type registerData struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      enums.Role
}

func (s *Server) loginForm(c echo.Context) error {
	p := page{Title: "Sign in", Data: loginData{}}
	if c.QueryParam("registered") != "" {
		p.Notice = "Your account was created. Please sign in."
	}
	return s.render(c, http.StatusOK, "login", p)
}

func (s *Server) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	sess := middleware.GetSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "no session in context")
	}

	user, err := sess.Login(c.Request().Context(), username, password)
	if err != nil {
		status, msg := loginFailure(err)
		return s.render(c, status, "login", page{Title: "Sign in", Error: msg, Data: loginData{Username: username}})
	}
	return c.Redirect(http.StatusSeeOther, gate.LandingRoute(user.Role))
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrCredentialsRequired):
		return http.StatusUnprocessableEntity, "Enter your username and password."
	case errors.Is(err, session.ErrCredentialsRejected) && api.StatusCode(err) != 0 && api.StatusCode(err) < 500:
		if detail := api.Detail(err); detail != "" {
			return http.StatusUnauthorized, detail
		}
		return http.StatusUnauthorized, "Invalid username or password."
	case errors.Is(err, session.ErrSubmissionInProgress):
		return http.StatusConflict, "A sign-in is already in progress. Please wait."
	default:
		return http.StatusServiceUnavailable, msgUnavailable
	}
}

func (s *Server) registerForm(c echo.Context) error {
	return s.render(c, http.StatusOK, "register", page{Title: "Create account", Data: registerData{Role: enums.RoleGraduate}})
}

func (s *Server) register(c echo.Context) error {
	role, _ := enums.ParseRole(c.FormValue("role"))
	reg := models.Registration{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
		Password2: c.FormValue("password2"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Role:      role,
	}
	// Passwords are never echoed back into the form.
	form := registerData{Username: reg.Username, Email: reg.Email, FirstName: reg.FirstName, LastName: reg.LastName, Role: reg.Role}

	sess := middleware.GetSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "no session in context")
	}

	_, err := sess.Register(c.Request().Context(), reg)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	case errors.Is(err, session.ErrRegisteredLoginFailed):
		return c.Redirect(http.StatusSeeOther, gate.LoginRoute+"?registered=1")
	}

	status, msg := registerFailure(err)
	return s.render(c, status, "register", page{Title: "Create account", Error: msg, Data: form})
}

func registerFailure(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity, "Passwords do not match."
	case errors.Is(err, session.ErrRoleNotAllowed):
		return http.StatusUnprocessableEntity, "Choose whether you are a graduate or an employer."
	case errors.Is(err, session.ErrSubmissionInProgress):
		return http.StatusConflict, "A registration is already in progress. Please wait."
	case errors.Is(err, session.ErrRegistrationRejected):
		if detail := api.Detail(err); detail != "" {
			return http.StatusBadRequest, detail
		}
		if api.StatusCode(err) >= 500 || isTransport(err) {
			return http.StatusServiceUnavailable, msgUnavailable
		}
		return http.StatusUnprocessableEntity, "Please fill in every field with a valid value."
	default:
		return http.StatusServiceUnavailable, msgUnavailable
	}
}

// isTransport reports an API call that never produced a response.
func isTransport(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}

func (s *Server) logout(c echo.Context) error {
	if sess := middleware.GetSession(c); sess != nil {
		if err := sess.Logout(c.Request().Context()); err != nil {
			c.Logger().Errorf("logout: %v", err)
		}
	}
	return c.Redirect(http.StatusSeeOther, gate.LoginRoute)
}
