package client

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the client-facing endpoints under the given Echo group.
// Verification is public; the key itself is the credential.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/verify", h.Verify)
}
