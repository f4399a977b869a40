package viewmodels

// License is a view model for license display
type License struct {
	ID       string
	Name     string
	Mobile   string
	Email    string
	Country  string
	HWID     string
	Key      string
	Expiry   string
	Status   string
	Created  string
	Lapsed   bool
	DaysLeft int
}

// StatusClass picks the badge style for the status column.
func (lic License) StatusClass() string {
	switch {
	case lic.Status == "Blocked":
		return "badge-blocked"
	case lic.Status == "Expired" || lic.Lapsed:
		return "badge-expired"
	default:
		return "badge-active"
	}
}

// ToggleLabel is the caption of the block/unblock button.
func (lic License) ToggleLabel() string {
	if lic.Status == "Blocked" {
		return "Unblock"
	}
	return "Block"
}

// Stats is a view model for the dashboard counters
type Stats struct {
	Total   int
	Active  int
	Expired int
	Blocked int
}

// DurationPreset is one entry of the duration select on the create form.
type DurationPreset struct {
	Days  int
	Label string
}

// DurationPresets are the durations offered when issuing a license.
var DurationPresets = []DurationPreset{
	{30, "1 Month"},
	{90, "3 Months"},
	{365, "1 Year"},
	{3650, "Lifetime (10 Years)"},
}

// LicenseForm holds the values of the create form, for redisplay after an error.
type LicenseForm struct {
	Name    string
	Mobile  string
	Email   string
	Country string
	HWID    string
	Days    int
}

// NewLicenseForm returns the form defaults.
func NewLicenseForm() LicenseForm {
	return LicenseForm{Country: "Egypt", Days: 365}
}
