package license

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Error classes. Callers test with errors.Is against these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("license not found")
	ErrStorage    = errors.New("license storage failure")
)

// Validation errors
var (
	ErrHardwareIDRequired = fmt.Errorf("%w: hardware id is required", ErrValidation)
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNegativeDays       = fmt.Errorf("%w: duration in days must not be negative", ErrValidation)
	ErrDuplicateKey       = fmt.Errorf("%w: a license with this hardware id and expiry already exists", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
)

// Status is the stored state of a license record.
type Status string

const (
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
	StatusBlocked Status = "Blocked"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusBlocked:
		return true
	}
	return false
}

// Value stores the status as plain text.
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// Record is one issued license. Expiry and Created are YYYY-MM-DD.
// Mobile, Email and Country are descriptive only.
type Record struct {
	ID         string  `db:"license_id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Mobile     *string `db:"mobile" json:"mobile,omitempty"`
	Email      *string `db:"email" json:"email,omitempty"`
	Country    *string `db:"country" json:"country,omitempty"`
	HardwareID string  `db:"hwid" json:"hwid"`
	Key        string  `db:"license_key" json:"key"`
	Expiry     string  `db:"expiry" json:"expiry"`
	Status     Status  `db:"status" json:"status"`
	Created    string  `db:"created" json:"created"`
}

// IssueRequest carries the inputs of a new license.
type IssueRequest struct {
	HardwareID string
	Days       int
	Name       string
	Mobile     string
	Email      string
	Country    string
}

// Validate checks the required issuance fields.
func (r *IssueRequest) Validate() error {
	if r.HardwareID == "" {
		return ErrHardwareIDRequired
	}
	if r.Days < 0 {
		return ErrNegativeDays
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Stats summarizes records by stored status.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
	Blocked int `json:"blocked"`
}

// Summarize counts records by their stored status. Records past their expiry
// that were never unblocked still count as Active here.
func Summarize(recs []Record) Stats {
	st := Stats{Total: len(recs)}
	for _, r := range recs {
		switch r.Status {
		case StatusActive:
			st.Active++
		case StatusExpired:
			st.Expired++
		case StatusBlocked:
			st.Blocked++
		}
	}
	return st
}

// Filter returns the records whose name contains term (case-insensitive) or
// whose mobile number contains term. An empty term returns recs unchanged.
func Filter(recs []Record, term string) []Record {
	term = strings.TrimSpace(term)
	if term == "" {
		return recs
	}
	lower := strings.ToLower(term)

	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Name), lower) ||
			(r.Mobile != nil && strings.Contains(*r.Mobile, term)) {
			out = append(out, r)
		}
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
