package admin

import "winsbygroup.com/keyserver/internal/license"

// -------------------------
// License DTOs
// -------------------------

type CreateLicenseRequest struct {
	HWID    string `json:"hwid"`
	Days    *int   `json:"days"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// DefaultDays applies when a create request omits days.
const DefaultDays = 365

func (r *CreateLicenseRequest) toIssue() *license.IssueRequest {
	days := DefaultDays
	if r.Days != nil {
		days = *r.Days
	}
	return &license.IssueRequest{
		HardwareID: r.HWID,
		Days:       days,
		Name:       r.Name,
		Mobile:     r.Mobile,
		Email:      r.Email,
		Country:    r.Country,
	}
}

type ToggleBlockResponse struct {
	ID     string         `json:"id"`
	Status license.Status `json:"status"`
}

type ListLicensesResponse struct {
	Stats    license.Stats    `json:"stats"`
	Licenses []license.Record `json:"licenses"`
}
