// Package components holds the HTML fragments of the admin panel. Fragments
// are swapped in place by htmx, so each one renders a stable element id.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"winsbygroup.com/keyserver/internal/middleware"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2328}
header{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;background:#1f2937;color:#fff}
main{max-width:1200px;margin:1.5rem auto;padding:0 1rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:.5rem;border-bottom:1px solid #e5e7eb;text-align:left;font-size:.9rem}
code{font-size:.85rem}
.stats{display:flex;gap:1rem;margin-bottom:1rem}
.stat{flex:1;background:#fff;padding:1rem;border-radius:6px}
.stat b{display:block;font-size:1.6rem}
.badge-active{color:#15803d}.badge-expired{color:#b45309}.badge-blocked{color:#b91c1c}
.error{color:#b91c1c}
form.inline{display:inline}
.card{background:#fff;padding:1rem;border-radius:6px;margin-bottom:1rem}
`

// toastScript shows the message of an HX-Trigger "showToast" event.
const toastScript = `document.body.addEventListener("showToast",function(e){var t=document.getElementById("toast");t.textContent=e.detail.message;t.className=e.detail.type;setTimeout(function(){t.textContent=""},6000)});`

// w collects writes so fragments can be built without checking every error.
type w struct {
	out io.Writer
	err error
}

func (b *w) raw(parts ...string) {
	for _, p := range parts {
		if b.err != nil {
			return
		}
		_, b.err = io.WriteString(b.out, p)
	}
}

// text writes s HTML escaped.
func (b *w) text(s string) {
	b.raw(templ.EscapeString(s))
}

func (b *w) child(ctx context.Context, c templ.Component) {
	if b.err != nil {
		return
	}
	b.err = c.Render(ctx, b.out)
}

// Layout wraps body in the page chrome. htmx sends the CSRF token from the
// meta tag on every request.
func Layout(title string, showLogout bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		b := &w{out: out}
		token := middleware.GetCSRF(ctx)

		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		b.text(title)
		b.raw(` | Keyserver</title><meta name="csrf-token" content="`)
		b.text(token)
		b.raw(`"><style>`, styles, `</style><script src="`, htmxSrc, `"></script></head>`)
		b.raw(`<body hx-headers='{"X-CSRF-Token": "`)
		b.text(token)
		b.raw(`"}'><header><strong>Keyserver</strong><span>v`)
		b.text(middleware.GetVersion(ctx))
		b.raw(`</span>`)
		if showLogout {
			b.raw(`<form method="post" action="/web/logout" class="inline">`)
			csrfField(b, token)
			b.raw(`<button type="submit">Logout</button></form>`)
		}
		b.raw(`</header><main>`)
		b.child(ctx, body)
		b.raw(`<div id="toast" aria-live="polite"></div></main><script>`, toastScript, `</script></body></html>`)
		return b.err
	})
}

func csrfField(b *w, token string) {
	if token == "" {
		return
	}
	b.raw(`<input type="hidden" name="_csrf" value="`)
	b.text(token)
	b.raw(`">`)
}
