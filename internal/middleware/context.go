package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/version"
)

type versionKey struct{}
type csrfKey struct{}

// Version adds the app version to the request context.
func Version() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), versionKey{}, version.Version)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetVersion retrieves the version from context.
func GetVersion(ctx context.Context) string {
	if v, ok := ctx.Value(versionKey{}).(string); ok {
		return v
	}
	return version.Version
}

// CSRF copies the token set by echo's CSRF middleware into the request
// context so templates can render it. Must run after that middleware.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), csrfKey{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// GetCSRF retrieves the CSRF token from context.
func GetCSRF(ctx context.Context) string {
	if token, ok := ctx.Value(csrfKey{}).(string); ok {
		return token
	}
	return ""
}
