package templates

import (
	"context"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
main{max-width:72rem;margin:0 auto;padding:1.5rem}
section,fieldset{background:#fff;border:1px solid #d9dee4;border-radius:6px;padding:1rem;margin:0 0 1rem}
label{display:inline-block;margin:0 1rem .5rem 0;vertical-align:top}
select{display:block;min-width:12rem}
table{border-collapse:collapse;margin:.5rem 0}
th,td{border:1px solid #d9dee4;padding:.25rem .75rem;text-align:left}
td.num{text-align:right}
.alert{background:#fdecea;border:1px solid #f5c2c0;padding:.5rem .75rem;border-radius:4px;margin:.5rem 0}
.warn{color:#8a5a00}
.muted{color:#616e7c}`

// Layout wraps a page body in the document shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}
