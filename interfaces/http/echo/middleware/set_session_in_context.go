package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/api"
	otelEcho "github.com/octabyte/alumni-portal/otel/echo"
	otelLogger "github.com/octabyte/alumni-portal/otel/logger"
	"github.com/octabyte/alumni-portal/session"
	"github.com/octabyte/alumni-portal/storage"
	ctxutil "github.com/octabyte/alumni-portal/utils/context"
)

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	// CookieMaxAge bounds the visitor cookie. Zero makes it a browser-session cookie.
	CookieMaxAge time.Duration
	Backend      storage.Backend
	// NewClient builds the visitor's own REST client so bearer credentials
	// never leak between visitors.
	NewClient      func() (*api.Client, error)
	ManagerOptions []session.Option
	Skipper        func(c echo.Context) bool
}

// SetSessionInContext identifies the visitor by cookie, restores their
// session from storage and publishes it on the echo and request contexts.
// Handlers run only after the session is resolved.
func SetSessionInContext(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = SessionCookie
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			visitorID := visitorFromCookie(c, cfg.CookieName)
			if visitorID == "" {
				visitorID = uuid.NewString()
				c.SetCookie(newVisitorCookie(cfg, visitorID))
			}

			client, err := cfg.NewClient()
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}

			ctx := c.Request().Context()
			manager := session.NewManager(client, cfg.Backend.Scope(visitorID), cfg.ManagerOptions...)
			user, err := manager.Restore(ctx)
			switch {
			case errors.Is(err, session.ErrStorage):
				otelLogger.ErrorCtx(ctx, "restore session", err, zap.String("visitor", visitorID))
			case err != nil:
				otelLogger.InfoCtx(ctx, "session ended on restore", zap.String("visitor", visitorID), zap.Error(err))
			}

			if user != nil {
				c.Set(otelEcho.RoleKey, user.Role.Slug())
			}
			c.Set(RequestSessionKey, manager)
			c.Set(APIClientKey, client)
			c.Set(VisitorIDKey, visitorID)

			ctx = ctxutil.WithSession(ctx, manager)
			ctx = ctxutil.WithAPIClient(ctx, client)
			ctx = ctxutil.WithVisitorID(ctx, visitorID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func visitorFromCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			log.Errorf("Error retrieving session cookie: %v", err)
		}
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

func newVisitorCookie(cfg SessionConfig, id string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.CookieMaxAge > 0 {
		cookie.MaxAge = int(cfg.CookieMaxAge / time.Second)
	}
	return cookie
}

// GetSession returns the session published by SetSessionInContext, or nil.
func GetSession(c echo.Context) session.Session {
	s, _ := c.Get(RequestSessionKey).(session.Session)
	return s
}

func GetAPIClient(c echo.Context) *api.Client {
	client, _ := c.Get(APIClientKey).(*api.Client)
	return client
}

func GetVisitorID(c echo.Context) string {
	id, _ := c.Get(VisitorIDKey).(string)
	return id
}
