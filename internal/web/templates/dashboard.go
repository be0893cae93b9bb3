package templates

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Title is the document title of every page.
const Title = "Occupancy: distinct users"

// Dashboard renders the full page: upload, per-file settings and results.
func Dashboard(view DashboardView) templ.Component {
	return Layout(Title, component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Distinct users per day and location</h1>`)
		if view.Error != nil {
			h.render(ctx, ErrorAlert(view.Error.Message, view.Error.Action, view.Error.Code))
		}
		h.render(ctx, UploadForm(view.Accept, view.MaxFiles, len(view.Files) > 0))
		if len(view.Files) == 0 {
			h.raw(`<p class="muted">Upload one or more occupancy logs to begin.</p>`)
			return
		}
		h.render(ctx, AnalyzeForm(view.Files, view.Common))
		if view.Result != nil {
			h.render(ctx, Results(*view.Result))
		}
	}))
}

// UploadForm renders the file picker and the reset button.
func UploadForm(accept string, maxFiles int, canReset bool) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section id="upload"><form method="post" action="/upload" enctype="multipart/form-data">`)
		h.raw(`<label>Occupancy logs (CSV or Excel`)
		if maxFiles > 0 {
			h.rawf(`, up to %d at once`, maxFiles)
		}
		h.raw(`)<input type="file" name="files" multiple required accept="`)
		h.text(accept)
		h.raw(`"></label><button type="submit">Upload</button></form>`)
		if canReset {
			h.raw(`<form method="post" action="/reset"><button type="submit">Reset Files</button></form>`)
		}
		h.raw(`</section>`)
	})
}

// AnalyzeForm renders the common filter and one fieldset per file.
func AnalyzeForm(files []FileView, common CommonView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="post" action="/analyze">`)
		if common.Available {
			h.raw(`<section id="common"><label><input type="checkbox" name="common" value="on"`)
			h.raw(checked(common.Enabled))
			h.raw(`> Apply the same locations and SSIDs to all files</label><div>`)
			h.multiSelect("Locations", "common-locations", common.Choices.Locations, common.Filter.Locations)
			h.multiSelect("SSIDs", "common-ssids", common.Choices.SSIDs, common.Filter.SSIDs)
			h.raw(`</div></section>`)
		}
		for _, f := range files {
			h.render(ctx, FileSettingsFields(f, common.Enabled))
		}
		h.raw(`<button type="submit">Analyze</button></form>`)
	})
}

// FileSettingsFields renders the choices for one file. Field names carry the
// file id so one form submits every file.
func FileSettingsFields(f FileView, commonEnabled bool) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<fieldset><legend>`)
		h.text(f.Name)
		h.raw(` <span class="muted">`)
		h.text(formatSize(f.Size))
		if f.Loaded() {
			h.raw(`, `)
			h.text(strconv.Itoa(f.Rows))
			h.raw(` rows`)
		}
		h.raw(`</span></legend>`)

		if !f.Loaded() {
			h.render(ctx, ErrorAlert(f.Error.Message, f.Error.Action, f.Error.Code))
			h.raw(`</fieldset>`)
			return
		}

		h.raw(`<label><input type="checkbox" name="alldates-`)
		h.text(f.ID)
		h.raw(`" value="on"`)
		h.raw(checked(f.Settings.AllDates))
		h.raw(`> All dates</label><div>`)
		h.multiSelect("Dates", "dates-"+f.ID, f.Dims.Dates, f.Settings.Dates)
		if !commonEnabled {
			h.multiSelect("Locations", "locations-"+f.ID, f.Dims.Locations, f.Settings.Locations)
			h.multiSelect("SSIDs", "ssids-"+f.ID, f.Dims.SSIDs, f.Settings.SSIDs)
		}
		h.raw(`<label>Location type<select name="type-`)
		h.text(f.ID)
		h.raw(`">`)
		h.options(f.Dims.LocationTypes, []string{f.LocationType()})
		h.raw(`</select></label></div></fieldset>`)
	})
}

// AcceptAttribute is the accept value for a set of file extensions.
func AcceptAttribute(exts []string) string {
	return strings.Join(exts, ",")
}
