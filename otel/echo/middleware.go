package echo

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RoleKey is the echo context key under which the session middleware
// publishes the visitor's resolved role.
const RoleKey = "sessionRole"

// Middleware instruments requests with otelecho and annotates the server
// span with the route, status and resolved visitor role.
func Middleware(serviceName string) echo.MiddlewareFunc {
	return MiddlewareWithConfig(serviceName, nil)
}

// MiddlewareWithConfig is Middleware with a skipper for routes that should
// not be traced, such as static assets or health checks.
func MiddlewareWithConfig(serviceName string, skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	baseMiddleware := otelecho.Middleware(serviceName)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		annotated := func(c echo.Context) error {
			err := next(c)

			span := trace.SpanFromContext(c.Request().Context())
			if span.IsRecording() {
				span.SetAttributes(
					attribute.String("http.route", c.Path()),
					attribute.Int("http.status_code", c.Response().Status),
				)
				if role, ok := c.Get(RoleKey).(string); ok && role != "" {
					span.SetAttributes(attribute.String("portal.role", role))
				}
				if err != nil {
					span.SetAttributes(attribute.String("error.message", err.Error()))
				}
			}
			return err
		}
		traced := baseMiddleware(annotated)

		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}
			return traced(c)
		}
	}
}
