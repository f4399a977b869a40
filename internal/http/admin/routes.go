package admin

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Licenses
	g.GET("/licenses", h.GetLicenses)
	g.GET("/licenses/:id", h.GetLicense)
	g.POST("/licenses", h.CreateLicense)
	g.POST("/licenses/:id/toggle-block", h.ToggleBlock)
	g.DELETE("/licenses/:id", h.DeleteLicense)

	// Expirations
	g.GET("/expirations", h.GetExpirations)

	// Export
	g.POST("/export", h.ExportLicenses)
}
