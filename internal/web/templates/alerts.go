package templates

import (
	"context"

	"github.com/a-h/templ"
)

// ErrorAlert renders a user-facing error with its suggested action and code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span>`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
	})
}

// ErrorPage is the body of a full-page error with a way back.
func ErrorPage(message, action, code string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Something went wrong</h1>`)
		h.render(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to the dashboard</a></p>`)
	})
}
