package web

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"winsbygroup.com/keyserver/internal/license"
	vm "winsbygroup.com/keyserver/internal/viewmodels"
)

// Re-export types for convenience
type (
	License     = vm.License
	Stats       = vm.Stats
	LicenseForm = vm.LicenseForm
)

var regionNamer = display.English.Regions()

const dateLayout = "2006-01-02"

// DisplayName capitalizes the first letter of each word of a customer name
// for the table. Other letters are kept as entered ("McDonald" stays).
// Casers keep state, so each call gets its own.
func DisplayName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(name))
}

// CountryName turns an ISO 3166 region code ("EG", "us") into its English
// name. Anything that is not a known region code is shown as entered.
func CountryName(country string) string {
	country = strings.TrimSpace(country)
	if len(country) < 2 || len(country) > 3 {
		return country
	}
	region, err := language.ParseRegion(country)
	if err != nil {
		return country
	}
	if name := regionNamer.Name(region); name != "" {
		return name
	}
	return country
}

// FromDomainLicense converts a domain license to view model. now decides
// whether an Active record has already passed its expiry.
func FromDomainLicense(rec license.Record, now time.Time) vm.License {
	out := vm.License{
		ID:      rec.ID,
		Name:    DisplayName(rec.Name),
		Mobile:  deref(rec.Mobile),
		Email:   deref(rec.Email),
		Country: CountryName(deref(rec.Country)),
		HWID:    rec.HardwareID,
		Key:     rec.Key,
		Expiry:  rec.Expiry,
		Status:  string(rec.Status),
		Created: rec.Created,
	}
	if exp, err := time.Parse(dateLayout, rec.Expiry); err == nil {
		out.DaysLeft = int(math.Floor(exp.Sub(now).Hours() / 24))
		out.Lapsed = now.UTC().Format(dateLayout) > rec.Expiry
	}
	return out
}

// FromDomainLicenses converts a slice of domain licenses to view models
func FromDomainLicenses(recs []license.Record, now time.Time) []vm.License {
	result := make([]vm.License, len(recs))
	for i, r := range recs {
		result[i] = FromDomainLicense(r, now)
	}
	return result
}

// FromDomainStats converts the registry counters to view model
func FromDomainStats(st license.Stats) vm.Stats {
	return vm.Stats{
		Total:   st.Total,
		Active:  st.Active,
		Expired: st.Expired,
		Blocked: st.Blocked,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
