package client

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/license"
)

const serverErrorMessage = "Server Error"

type Handler struct {
	LicenseService *license.Service
}

func NewHandler(l *license.Service) *Handler {
	return &Handler{LicenseService: l}
}

// VerifyRequest is the body clients send to check a key.
type VerifyRequest struct {
	Key  string `json:"key"`
	HWID string `json:"hwid"`
}

// VerifyResponse carries either a rejection message or the expiry details.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
	DaysLeft *int   `json:"daysLeft,omitempty"`
}

// POST /verify
//
// Always answers 200. Clients read the verdict from the body.
func (h *Handler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, VerifyResponse{Message: serverErrorMessage})
	}

	res := h.LicenseService.Verify(c.Request().Context(), req.Key, req.HWID)
	if !res.Valid {
		return c.JSON(http.StatusOK, VerifyResponse{Message: res.Reason.Message()})
	}

	days := res.DaysLeft
	return c.JSON(http.StatusOK, VerifyResponse{
		Valid:    true,
		Expiry:   res.Expiry,
		DaysLeft: &days,
	})
}
