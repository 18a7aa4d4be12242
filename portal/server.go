package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/events"
	"github.com/octabyte/alumni-portal/interfaces/http/echo/middleware"
	otelEcho "github.com/octabyte/alumni-portal/otel/echo"
	"github.com/octabyte/alumni-portal/session"
	"github.com/octabyte/alumni-portal/storage"
)

const csrfField = "csrf"

type Config struct {
	ServiceName  string
	CookieName   string
	CookieSecure bool
	CookieMaxAge time.Duration
	Timezone     string
	// LogLevel sets echo's own logger; application logs go through zap.
	LogLevel string
	Tracing  bool

	Backend   storage.Backend
	NewClient func() (*api.Client, error)
	Notifier  events.Notifier
	// Health reports whether session storage is reachable; nil means always healthy.
	Health func(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	health func(ctx context.Context) error
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Backend == nil || cfg.NewClient == nil {
		return nil, errors.New("portal: backend and client factory are required")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	renderer, err := NewRenderer(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Logger.SetLevel(echoLogLevel(cfg.LogLevel))

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	if cfg.Tracing {
		e.Use(otelEcho.MiddlewareWithConfig(cfg.ServiceName, func(c echo.Context) bool {
			return c.Path() == "/healthz"
		}))
	}
	e.Use(echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	var opts []session.Option
	if cfg.Notifier != nil {
		opts = append(opts, session.WithNotifier(cfg.Notifier))
	}
	e.Use(middleware.SetSessionInContext(middleware.SessionConfig{
		CookieName:     cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieMaxAge:   cfg.CookieMaxAge,
		Backend:        cfg.Backend,
		NewClient:      cfg.NewClient,
		ManagerOptions: opts,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
	}))

	s := &Server{echo: e, health: cfg.Health}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/healthz", s.healthz)

	e.GET("/", s.home)
	e.GET("/login", s.loginForm)
	e.POST("/login", s.login)
	e.GET("/register", s.registerForm)
	e.POST("/register", s.register)
	e.POST("/logout", s.logout)
	e.GET("/dashboard", s.dashboard)
	e.GET("/session", s.sessionState)

	graduate := e.Group("/graduate", middleware.RequireRole(enums.RoleGraduate))
	graduate.GET("/profile", s.graduateProfile)
	graduate.GET("/profile/edit", s.graduateProfileForm)
	graduate.POST("/profile/edit", s.updateGraduateProfile)
	graduate.GET("/resume", s.graduateResume)
	graduate.POST("/resume", s.uploadResume)
	graduate.POST("/resume/delete", s.removeResume)
	graduate.GET("/vacancies", s.graduateVacancies)
	graduate.GET("/vacancies/:id", s.graduateVacancy)
	graduate.POST("/vacancies/:id/apply", s.applyToVacancy)

	employer := e.Group("/employer", middleware.RequireRole(enums.RoleEmployer))
	employer.GET("/dashboard", s.employerDashboard)
	employer.GET("/profile/edit", s.employerProfileForm)
	employer.POST("/profile/edit", s.updateEmployerProfile)
	employer.GET("/vacancies", s.employerVacancies)
	employer.GET("/vacancies/new", s.vacancyForm)
	employer.POST("/vacancies/new", s.createVacancy)
	employer.GET("/vacancies/:id/edit", s.editVacancyForm("/employer/vacancies/"))
	employer.POST("/vacancies/:id/edit", s.updateVacancy("/employer/vacancies/", func(uint64) string {
		return "/employer/vacancies?updated=1"
	}))
	employer.POST("/vacancies/:id/delete", s.deleteVacancy("/employer/vacancies"))
	employer.GET("/graduates", s.graduates)
	employer.GET("/graduates/:id", s.graduateDetail)

	admin := e.Group("/admin", middleware.RequireRole(enums.RoleAdmin))
	admin.GET("/dashboard", s.adminDashboard)
	admin.GET("/dashboard/export", s.exportStats)
	admin.GET("/graduates", s.graduates)
	admin.GET("/graduates/:id", s.graduateDetail)
	admin.POST("/graduates/:id", s.updateGraduate)
	admin.POST("/graduates/:id/delete", s.deleteGraduate)
	admin.GET("/employers", s.adminEmployers)
	admin.GET("/employers/:id", s.adminEmployer)
	admin.POST("/employers/:id", s.updateEmployer)
	admin.POST("/employers/:id/delete", s.deleteEmployer)
	admin.GET("/vacancies", s.adminVacancies)
	admin.GET("/vacancies/:id", s.adminVacancy)
	admin.GET("/vacancies/:id/edit", s.editVacancyForm("/admin/vacancies/"))
	admin.POST("/vacancies/:id/edit", s.updateVacancy("/admin/vacancies/", adminVacancyRoute))
	admin.POST("/vacancies/:id/delete", s.deleteVacancy("/admin/vacancies"))
	admin.GET("/resumes", s.adminResumes)
}

func (s *Server) healthz(c echo.Context) error {
	if s.health != nil {
		if err := s.health(c.Request().Context()); err != nil {
			c.Logger().Errorf("health check: %v", err)
			return c.String(http.StatusServiceUnavailable, "unavailable")
		}
	}
	return c.String(http.StatusOK, "ok")
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func echoLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case enums.LogLevelDebug:
		return log.DEBUG
	case enums.LogLevelWarn:
		return log.WARN
	case enums.LogLevelError, enums.LogLevelFatal, enums.LogLevelPanic:
		return log.ERROR
	default:
		return log.INFO
	}
}
