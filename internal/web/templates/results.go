package templates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/usercount/internal/core"
)

// Results renders every file's table, the merged table and export links.
func Results(view ResultView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section id="results"><h2>Results</h2>`)

		if len(view.Locations) > 0 {
			h.raw(`<form method="get" action="/#results">`)
			h.multiSelect("Show locations", "locations", view.Locations, view.Shown)
			h.raw(`<button type="submit">Show</button></form>`)
		}

		for _, f := range view.Files {
			h.raw(`<h3>`)
			h.text(f.Name)
			h.raw(`</h3>`)
			switch {
			case f.Error != nil:
				h.render(ctx, ErrorAlert(f.Error.Message, f.Error.Action, f.Error.Code))
				continue
			case !f.Complete:
				h.raw(`<p class="muted">Select at least one date, location and SSID to see counts.</p>`)
				continue
			}
			for _, w := range f.Warnings {
				h.raw(`<p class="warn">`)
				h.text(w)
				h.raw(`</p>`)
			}
			h.render(ctx, ResultTable(f.Table))
			h.render(ctx, exportLinks(f.Target, view.ExportQuery))
		}

		if view.HasMerged {
			h.raw(`<h3>All files merged</h3>`)
			h.render(ctx, ResultTable(view.Merged))
			h.render(ctx, exportLinks(core.MergedTarget, view.ExportQuery))
		}
		h.raw(`</section>`)
	})
}

// ResultTable renders one result table.
func ResultTable(table core.ResultTable) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if len(table) == 0 {
			h.raw(`<p class="muted">No rows.</p>`)
			return
		}
		h.raw(`<table><thead><tr>`)
		for _, col := range core.ResultColumns {
			h.raw(`<th>`)
			h.text(col)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, r := range table {
			h.raw(`<tr><td>`)
			h.text(r.Date)
			h.raw(`</td><td>`)
			h.text(r.LocationName)
			h.raw(`</td><td class="num">`)
			h.raw(strconv.Itoa(r.DistinctCount))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
	})
}

func exportLinks(target, query string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		base := "/export/" + url.PathEscape(target)
		h.raw(`<p>Download `)
		for i, f := range []core.Format{core.FormatCSV, core.FormatSpreadsheet} {
			if i > 0 {
				h.raw(` | `)
			}
			href := joinQuery(base+"?format="+string(f), query)
			h.raw(`<a href="`)
			h.text(href)
			h.raw(`">`)
			h.text(string(f))
			h.raw(`</a>`)
		}
		h.raw(`</p>`)
	})
}
