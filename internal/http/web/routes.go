package web

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all web UI routes
func RegisterRoutes(e *echo.Group, h *Handler) {
	// Authentication
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	// Dashboard
	e.GET("/", h.Index)
	e.GET("", h.Index)

	// Licenses
	e.GET("/licenses", h.ListLicenses)
	e.POST("/licenses", h.CreateLicense)
	e.POST("/licenses/:id/toggle-block", h.ToggleBlock)
	e.DELETE("/licenses/:id", h.DeleteLicense)
	e.GET("/licenses/csv", h.ExportCSV)

	// Expirations
	e.GET("/expirations", h.ListExpirations)
	e.GET("/expirations/csv", h.ExportExpirationsCSV)
}
