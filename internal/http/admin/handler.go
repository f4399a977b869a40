package admin

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/license"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// errorJSON maps license errors to a status code and a short message.
// Storage details are logged, not returned.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, license.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, license.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "license not found"})
	default:
		log.Printf("admin %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// Licenses

func (h *Handler) GetLicenses(c echo.Context) error {
	out, err := h.svc.GetLicenses(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetLicense(c echo.Context) error {
	out, err := h.svc.GetLicense(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateLicense(c echo.Context) error {
	var req CreateLicenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	out, err := h.svc.CreateLicense(c.Request().Context(), &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) ToggleBlock(c echo.Context) error {
	out, err := h.svc.ToggleBlock(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteLicense(c echo.Context) error {
	if err := h.svc.DeleteLicense(c.Request().Context(), c.Param("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Expirations

func (h *Handler) GetExpirations(c echo.Context) error {
	out, err := h.svc.GetExpirations(c.Request().Context(), c.QueryParam("before"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Export

func (h *Handler) ExportLicenses(c echo.Context) error {
	out, err := h.svc.Export(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
