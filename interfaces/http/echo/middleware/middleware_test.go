package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/models"
	otelEcho "github.com/octabyte/alumni-portal/otel/echo"
	"github.com/octabyte/alumni-portal/session"
	"github.com/octabyte/alumni-portal/storage"
	ctxutil "github.com/octabyte/alumni-portal/utils/context"
)

const visitor = "6f1c1c1e-0a41-4a8e-9f55-1d2b1b8c9a10"

type MiddlewareTestSuite struct {
	suite.Suite
	apiServer *httptest.Server
	backend   *storage.MemoryBackend
	e         *echo.Echo
	seenRole  string
}

func (s *MiddlewareTestSuite) SetupTest() {
	s.apiServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/me/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer TG":
			_, _ = w.Write([]byte(`{"id":1,"username":"gina","role":"ALUMNI","first_name":"Gina","last_name":"G"}`))
		case "Bearer TE":
			_, _ = w.Write([]byte(`{"id":2,"username":"eve","role":"EMPLOYER"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
		}
	}))
	s.backend = storage.NewMemoryBackend()
	s.seenRole = ""

	s.e = echo.New()
	s.e.Use(SetSessionInContext(SessionConfig{
		Backend: s.backend,
		NewClient: func() (*api.Client, error) {
			return api.New(api.Config{BaseURL: s.apiServer.URL + "/api"})
		},
		Skipper: func(c echo.Context) bool { return c.Path() == "/healthz" },
	}))
	s.e.GET("/healthz", func(c echo.Context) error {
		if GetSession(c) != nil {
			return c.String(http.StatusInternalServerError, "session on skipped route")
		}
		return c.String(http.StatusOK, "ok")
	})
	s.e.GET("/whoami", func(c echo.Context) error {
		if ctxutil.GetSessionFromContext(c.Request().Context()) == nil || GetAPIClient(c) == nil {
			return c.String(http.StatusInternalServerError, "missing context values")
		}
		state := GetSession(c).State()
		if state.User == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, state.User.Username)
	})
	s.e.GET("/visitor", func(c echo.Context) error {
		return c.String(http.StatusOK, GetVisitorID(c))
	})
	graduate := s.e.Group("/graduate", RequireRole(enums.RoleGraduate))
	graduate.GET("/profile", func(c echo.Context) error {
		s.seenRole, _ = c.Get(otelEcho.RoleKey).(string)
		return c.String(http.StatusOK, "profile")
	})
	employer := s.e.Group("/employer", RequireRole(enums.RoleEmployer))
	employer.GET("/dashboard", func(c echo.Context) error { return c.String(http.StatusOK, "dashboard") })
}

func (s *MiddlewareTestSuite) TearDownTest() {
	s.apiServer.Close()
}

func (s *MiddlewareTestSuite) get(path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *MiddlewareTestSuite) TestNewVisitorGetsCookie() {
	rec := s.get("/whoami", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("anonymous", rec.Body.String())

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(SessionCookie, cookies[0].Name)
	s.True(cookies[0].HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookies[0].SameSite)
}

func (s *MiddlewareTestSuite) TestVisitorIDMatchesCookie() {
	rec := s.get("/visitor", "")
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(cookies[0].Value, rec.Body.String())

	rec = s.get("/visitor", visitor)
	s.Equal(visitor, rec.Body.String())
}

func (s *MiddlewareTestSuite) TestMalformedCookieIsReplaced() {
	rec := s.get("/whoami", "../../etc/passwd")
	s.Require().Len(rec.Result().Cookies(), 1)
	s.NotEqual("../../etc/passwd", rec.Result().Cookies()[0].Value)
}

func (s *MiddlewareTestSuite) TestAnonymousIsRedirectedToLogin() {
	rec := s.get("/graduate/profile", "")
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get(echo.HeaderLocation))
}

func (s *MiddlewareTestSuite) TestRestoredSessionIsAuthorized() {
	s.backend.Put(visitor, storage.Record{AccessToken: "TG", RefreshToken: "R", Role: enums.RoleGraduate})

	rec := s.get("/graduate/profile", visitor)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("profile", rec.Body.String())
	s.Equal("graduate", s.seenRole)
	s.Empty(rec.Result().Cookies(), "known visitors keep their cookie")
}

func (s *MiddlewareTestSuite) TestRoleMismatchRedirectsToLogin() {
	s.backend.Put(visitor, storage.Record{AccessToken: "TG", RefreshToken: "R", Role: enums.RoleGraduate})

	rec := s.get("/employer/dashboard", visitor)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get(echo.HeaderLocation))
}

func (s *MiddlewareTestSuite) TestRejectedStoredTokenClearsSession() {
	s.backend.Put(visitor, storage.Record{AccessToken: "revoked", RefreshToken: "R", Role: enums.RoleGraduate})

	rec := s.get("/graduate/profile", visitor)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get(echo.HeaderLocation))

	_, stored := s.backend.Get(visitor)
	s.False(stored)
}

func (s *MiddlewareTestSuite) TestSkipper() {
	rec := s.get("/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Result().Cookies())
}

func (s *MiddlewareTestSuite) TestNewClientFailure() {
	e := echo.New()
	e.Use(SetSessionInContext(SessionConfig{
		Backend:   s.backend,
		NewClient: func() (*api.Client, error) { return api.New(api.Config{}) },
	}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
}

type resolvingSession struct{}

func (resolvingSession) State() session.State { return session.State{Resolving: true} }
func (resolvingSession) Restore(context.Context) (*models.User, error) {
	return nil, nil
}
func (resolvingSession) Login(context.Context, string, string) (*models.User, error) {
	return nil, nil
}
func (resolvingSession) Register(context.Context, models.Registration) (*models.User, error) {
	return nil, nil
}
func (resolvingSession) Logout(context.Context) error { return nil }

func (s *MiddlewareTestSuite) TestResolvingSessionRendersLoading() {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(RequestSessionKey, resolvingSession{})
			return next(c)
		}
	})
	e.GET("/admin/dashboard", func(c echo.Context) error { return c.String(http.StatusOK, "secret") }, RequireRole(enums.RoleAdmin))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Header().Get(echo.HeaderLocation))
	s.True(strings.Contains(rec.Body.String(), "Loading"))
	s.NotContains(rec.Body.String(), "secret")
	s.Equal("no-store", rec.Header().Get(echo.HeaderCacheControl))
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
