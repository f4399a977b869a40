// Package pages renders full admin panel pages from the shared components.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	vm "winsbygroup.com/keyserver/internal/viewmodels"
	"winsbygroup.com/keyserver/templates/components"
)

// Login renders the admin key form.
func Login(errMsg string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}
		write(`<form method="post" action="/web/login" class="card"><h2>Admin Login</h2>`)
		if errMsg != "" {
			write(`<p class="error">` + templ.EscapeString(errMsg) + `</p>`)
		}
		write(`<label>Admin key <input type="password" name="api_key" autofocus required></label> <button type="submit">Login</button></form>`)
		return err
	})
	return components.Layout("Login", false, body)
}

// Dashboard renders counters, the issue form, search and the license table.
func Dashboard(stats vm.Stats, lics []vm.License, search string, form vm.LicenseForm) templ.Component {
	return components.Layout("Licenses", true, join(
		components.StatsBar(stats, false),
		components.LicenseForm(form, ""),
		components.SearchBox(search),
		components.LicensesTable(lics),
	))
}

// Expirations renders the expiring licenses report.
func Expirations(lics []vm.License, before string) templ.Component {
	return components.Layout("Expirations", true, join(
		templ.Raw(`<p><a href="/web/">Back to licenses</a></p>`),
		components.ExpirationsTable(lics, before),
	))
}

func join(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
