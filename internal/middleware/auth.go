package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const SessionCookieName = "keyadmin_session"

// AdminAPIKeyAuth validates the X-API-Key header against adminKey.
// Used for ADMIN API endpoints. Returns 401 if authentication fails.
func AdminAPIKeyAuth(adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin API key not configured")
			}

			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing admin API key")
			}
			if !ValidateAdminKey(adminKey, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin API key")
			}

			return next(c)
		}
	}
}

// WebAuth accepts an X-API-Key header or a live session cookie and redirects
// everything else to the login page.
func WebAuth(adminKey string, sessions SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "/web/login" || strings.HasPrefix(path, "/web/static/") {
				return next(c)
			}

			if key := c.Request().Header.Get("X-API-Key"); key != "" && ValidateAdminKey(adminKey, key) {
				return next(c)
			}

			if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if _, ok := sessions.Get(cookie.Value); ok {
					return next(c)
				}
			}

			return c.Redirect(http.StatusFound, "/web/login")
		}
	}
}

// ValidateAdminKey compares key with the configured admin key in constant time.
// An unconfigured admin key never matches.
func ValidateAdminKey(adminKey, key string) bool {
	if adminKey == "" || len(adminKey) != len(key) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(adminKey), []byte(key)) == 1
}
