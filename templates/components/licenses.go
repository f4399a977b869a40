package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"winsbygroup.com/keyserver/internal/middleware"
	vm "winsbygroup.com/keyserver/internal/viewmodels"
)

// StatsBar renders the dashboard counters. With oob set, htmx swaps it in
// alongside the main target of a response.
func StatsBar(st vm.Stats, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		b.raw(`<div id="stats" class="stats"`)
		if oob {
			b.raw(` hx-swap-oob="true"`)
		}
		b.raw(`>`)
		for _, s := range []struct {
			label string
			n     int
		}{
			{"Total", st.Total},
			{"Active", st.Active},
			{"Expired", st.Expired},
			{"Blocked", st.Blocked},
		} {
			b.raw(`<div class="stat"><b>`, strconv.Itoa(s.n), `</b>`, s.label, `</div>`)
		}
		b.raw(`</div>`)
		return b.err
	})
}

// LicensesTable renders the license list with block and delete actions.
func LicensesTable(lics []vm.License) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		b.raw(`<div id="licenses-table"><table><thead><tr>`,
			`<th>Name</th><th>Mobile</th><th>Country</th><th>HWID</th><th>Key</th>`,
			`<th>Expiry</th><th>Status</th><th></th></tr></thead><tbody>`)

		if len(lics) == 0 {
			b.raw(`<tr><td colspan="8">No licenses found.</td></tr>`)
		}
		for _, lic := range lics {
			b.raw(`<tr id="license-`)
			b.text(lic.ID)
			b.raw(`"><td>`)
			b.text(lic.Name)
			if lic.Email != "" {
				b.raw(`<br><small>`)
				b.text(lic.Email)
				b.raw(`</small>`)
			}
			b.raw(`</td><td>`)
			b.text(lic.Mobile)
			b.raw(`</td><td>`)
			b.text(lic.Country)
			b.raw(`</td><td><code>`)
			b.text(lic.HWID)
			b.raw(`</code></td><td><code>`)
			b.text(lic.Key)
			b.raw(`</code></td><td>`)
			b.text(lic.Expiry)
			if !lic.Lapsed && lic.Status != "Blocked" {
				b.raw(`<br><small>`, strconv.Itoa(lic.DaysLeft), ` days</small>`)
			}
			b.raw(`</td><td class="`, lic.StatusClass(), `">`)
			b.text(lic.Status)
			b.raw(`</td><td>`)

			b.raw(`<button hx-post="/web/licenses/`)
			b.text(lic.ID)
			b.raw(`/toggle-block" hx-target="#licenses-table" hx-swap="outerHTML">`, lic.ToggleLabel(), `</button> `)
			b.raw(`<button hx-delete="/web/licenses/`)
			b.text(lic.ID)
			b.raw(`" hx-target="#licenses-table" hx-swap="outerHTML" hx-confirm="Delete the license for `)
			b.text(lic.Name)
			b.raw(`?">Delete</button></td></tr>`)
		}
		b.raw(`</tbody></table></div>`)
		return b.err
	})
}

// LicenseForm renders the issue form. errMsg is shown above the fields.
func LicenseForm(form vm.LicenseForm, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		b.raw(`<form id="license-form" class="card" hx-post="/web/licenses" hx-target="#licenses-table" hx-swap="outerHTML">`)
		csrfField(b, middleware.GetCSRF(ctx))
		if errMsg != "" {
			b.raw(`<p class="error">`)
			b.text(errMsg)
			b.raw(`</p>`)
		}
		input(b, "name", "Client name", form.Name, true)
		input(b, "mobile", "Mobile", form.Mobile, false)
		input(b, "email", "Email", form.Email, false)
		input(b, "country", "Country", form.Country, false)
		input(b, "hwid", "Hardware ID", form.HWID, true)

		b.raw(`<label>Duration <select name="days">`)
		for _, p := range vm.DurationPresets {
			b.raw(`<option value="`, strconv.Itoa(p.Days), `"`)
			if p.Days == form.Days {
				b.raw(` selected`)
			}
			b.raw(`>`, p.Label, `</option>`)
		}
		b.raw(`</select></label> <button type="submit">Generate Key</button></form>`)
		return b.err
	})
}

func input(b *w, name, label, value string, required bool) {
	b.raw(`<label>`, label, ` <input name="`, name, `" value="`)
	b.text(value)
	b.raw(`"`)
	if required {
		b.raw(` required`)
	}
	b.raw(`></label> `)
}

// SearchBox filters the table as the admin types.
func SearchBox(term string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		b.raw(`<div class="card"><input type="search" name="search" placeholder="Search name or mobile" value="`)
		b.text(term)
		b.raw(`" hx-get="/web/licenses" hx-trigger="input changed delay:300ms, search" hx-target="#licenses-table" hx-swap="outerHTML"> `)
		b.raw(`<a href="/web/licenses/csv">Download CSV</a> <a href="/web/expirations">Expirations</a></div>`)
		return b.err
	})
}

// ExpirationsTable lists records expiring before the given date.
func ExpirationsTable(lics []vm.License, before string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		b.raw(`<div id="expirations-table"><form class="card" hx-get="/web/expirations" hx-target="#expirations-table" hx-swap="outerHTML">`)
		b.raw(`<label>Expiring before <input type="date" name="before" value="`)
		b.text(before)
		b.raw(`"></label> <button type="submit">Show</button> <a href="/web/expirations/csv?before=`)
		b.text(before)
		b.raw(`">Download CSV</a></form><table><thead><tr><th>Name</th><th>Mobile</th><th>Email</th><th>Key</th><th>Expiry</th><th>Status</th></tr></thead><tbody>`)
		if len(lics) == 0 {
			b.raw(`<tr><td colspan="6">No licenses expire before this date.</td></tr>`)
		}
		for _, lic := range lics {
			b.raw(`<tr><td>`)
			b.text(lic.Name)
			b.raw(`</td><td>`)
			b.text(lic.Mobile)
			b.raw(`</td><td>`)
			b.text(lic.Email)
			b.raw(`</td><td><code>`)
			b.text(lic.Key)
			b.raw(`</code></td><td>`)
			b.text(lic.Expiry)
			b.raw(`</td><td class="`, lic.StatusClass(), `">`)
			b.text(lic.Status)
			b.raw(`</td></tr>`)
		}
		b.raw(`</tbody></table></div>`)
		return b.err
	})
}
