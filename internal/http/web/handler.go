package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/export"
	"winsbygroup.com/keyserver/internal/http/admin"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/middleware"
	vm "winsbygroup.com/keyserver/internal/viewmodels"
	"winsbygroup.com/keyserver/templates/components"
	"winsbygroup.com/keyserver/templates/pages"
)

// Handler handles web UI requests
type Handler struct {
	svc          *admin.Service
	sessions     middleware.SessionStore
	adminKey     string
	secureCookie bool
	now          func() time.Time
}

// NewHandler creates a new web handler
func NewHandler(svc *admin.Service, sessions middleware.SessionStore, adminKey string, secureCookie bool) *Handler {
	return &Handler{
		svc:          svc,
		sessions:     sessions,
		adminKey:     adminKey,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// --------------------------
// Authentication
// --------------------------

// LoginPage renders the login form
func (h *Handler) LoginPage(c echo.Context) error {
	return pages.Login("").Render(c.Request().Context(), c.Response())
}

// Login handles login form submission
func (h *Handler) Login(c echo.Context) error {
	apiKey := c.FormValue("api_key")

	if !middleware.ValidateAdminKey(h.adminKey, apiKey) {
		c.Response().WriteHeader(http.StatusUnauthorized)
		return pages.Login("Invalid admin key").Render(c.Request().Context(), c.Response())
	}

	// the cookie carries a session id, never the admin key
	sessionID := h.sessions.Create()

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(middleware.SessionTTL.Seconds()),
	})

	return c.Redirect(http.StatusFound, "/web/")
}

// Logout clears the session cookie and deletes the server-side session
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	return c.Redirect(http.StatusFound, "/web/login")
}

// --------------------------
// Licenses
// --------------------------

// Index renders the dashboard page
func (h *Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	search := c.QueryParam("search")

	out, err := h.svc.GetLicenses(ctx, search)
	if err != nil {
		return h.serverError(c, err)
	}

	return pages.Dashboard(
		FromDomainStats(out.Stats),
		FromDomainLicenses(out.Licenses, h.now()),
		search,
		vm.NewLicenseForm(),
	).Render(ctx, c.Response())
}

// ListLicenses renders the table only, for search as you type.
func (h *Handler) ListLicenses(c echo.Context) error {
	if !isHTMX(c) {
		return c.Redirect(http.StatusFound, "/web/?search="+url.QueryEscape(c.QueryParam("search")))
	}
	return h.renderTable(c, c.QueryParam("search"))
}

func (h *Handler) CreateLicense(c echo.Context) error {
	ctx := c.Request().Context()

	form := vm.LicenseForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Mobile:  strings.TrimSpace(c.FormValue("mobile")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Country: strings.TrimSpace(c.FormValue("country")),
		HWID:    c.FormValue("hwid"),
		Days:    admin.DefaultDays,
	}
	if d := strings.TrimSpace(c.FormValue("days")); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			return h.renderFormWithError(c, form, "Duration must be a whole number of days")
		}
		form.Days = days
	}

	// the hardware id is stored exactly as entered; verify compares it verbatim
	hwid := form.HWID
	if strings.TrimSpace(hwid) == "" {
		hwid = ""
	}

	days := form.Days
	rec, err := h.svc.CreateLicense(ctx, &admin.CreateLicenseRequest{
		HWID:    hwid,
		Days:    &days,
		Name:    form.Name,
		Mobile:  form.Mobile,
		Email:   form.Email,
		Country: form.Country,
	})
	if errors.Is(err, license.ErrValidation) {
		return h.renderFormWithError(c, form, userMessage(err))
	}
	if err != nil {
		return h.serverError(c, err)
	}

	setToast(c, "Key generated: "+rec.Key, "success")
	return h.renderTable(c, "")
}

func (h *Handler) ToggleBlock(c echo.Context) error {
	out, err := h.svc.ToggleBlock(c.Request().Context(), c.Param("id"))
	if errors.Is(err, license.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "License not found")
	}
	if err != nil {
		return h.serverError(c, err)
	}

	setToast(c, "License is now "+string(out.Status), "success")
	return h.renderTable(c, "")
}

func (h *Handler) DeleteLicense(c echo.Context) error {
	if err := h.svc.DeleteLicense(c.Request().Context(), c.Param("id")); err != nil {
		return h.serverError(c, err)
	}

	setToast(c, "License deleted", "success")
	return h.renderTable(c, "")
}

// ExportCSV downloads every license as CSV.
func (h *Handler) ExportCSV(c echo.Context) error {
	out, err := h.svc.GetLicenses(c.Request().Context(), "")
	if err != nil {
		return h.serverError(c, err)
	}

	filename := fmt.Sprintf("licenses_%s.csv", h.now().Format(dateLayout))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), out.Licenses)
}

// --------------------------
// Expirations
// --------------------------

func (h *Handler) ListExpirations(c echo.Context) error {
	ctx := c.Request().Context()
	before := h.beforeParam(c)

	recs, err := h.svc.GetExpirations(ctx, before)
	if errors.Is(err, license.ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, userMessage(err))
	}
	if err != nil {
		return h.serverError(c, err)
	}

	view := FromDomainLicenses(recs, h.now())
	if isHTMX(c) {
		return components.ExpirationsTable(view, before).Render(ctx, c.Response())
	}
	return pages.Expirations(view, before).Render(ctx, c.Response())
}

func (h *Handler) ExportExpirationsCSV(c echo.Context) error {
	before := h.beforeParam(c)

	recs, err := h.svc.GetExpirations(c.Request().Context(), before)
	if errors.Is(err, license.ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, userMessage(err))
	}
	if err != nil {
		return h.serverError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=expiring_licenses_%s.csv", before))
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), recs)
}

// --------------------------
// Helper methods
// --------------------------

func (h *Handler) beforeParam(c echo.Context) string {
	if before := c.QueryParam("before"); before != "" {
		return before
	}
	return h.now().Format(dateLayout)
}

// renderTable answers an htmx action with the refreshed table and counters.
func (h *Handler) renderTable(c echo.Context, search string) error {
	ctx := c.Request().Context()

	out, err := h.svc.GetLicenses(ctx, search)
	if err != nil {
		return h.serverError(c, err)
	}

	if err := components.LicensesTable(FromDomainLicenses(out.Licenses, h.now())).Render(ctx, c.Response()); err != nil {
		return err
	}
	return components.StatsBar(FromDomainStats(out.Stats), true).Render(ctx, c.Response())
}

func (h *Handler) renderFormWithError(c echo.Context, form vm.LicenseForm, msg string) error {
	c.Response().Header().Set("HX-Retarget", "#license-form")
	c.Response().Header().Set("HX-Reswap", "outerHTML")
	return components.LicenseForm(form, msg).Render(c.Request().Context(), c.Response())
}

// serverError logs err and returns a generic 500.
func (h *Handler) serverError(c echo.Context, err error) error {
	log.Printf("web %s %s: %v", c.Request().Method, c.Path(), err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
}

// userMessage strips the error class prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, license.ErrValidation.Error()+": "); ok {
		msg = rest
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func setToast(c echo.Context, message, kind string) {
	payload, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{"message": message, "type": kind},
	})
	c.Response().Header().Set("HX-Trigger", string(payload))
}
