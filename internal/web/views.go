package web

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/session"
	"github.com/JonMunkholm/usercount/internal/web/templates"
)

func userMessage(err error) *core.UserMessage {
	if err == nil {
		return nil
	}
	msg := core.MapError(err)
	return &msg
}

func fileViews(files []*session.File) []templates.FileView {
	views := make([]templates.FileView, 0, len(files))
	for _, f := range files {
		v := templates.FileView{
			ID:       f.ID,
			Name:     f.Name,
			Size:     f.Size,
			Settings: f.Settings,
		}
		if f.Loaded() {
			v.Rows = f.Dataset.Len()
			v.Dims = f.Dataset.Dimensions()
		} else {
			v.Error = userMessage(f.Err)
			if v.Error == nil {
				v.Error = userMessage(core.ErrNoFile)
			}
		}
		views = append(views, v)
	}
	return views
}

func commonView(sess *session.Session) templates.CommonView {
	choices, ok := core.CommonChoices(sess.Inputs())
	view := templates.CommonView{Available: ok, Choices: choices}
	if c := sess.Common(); c != nil {
		view.Enabled = true
		view.Filter = *c
	}
	return view
}

// resultView renders a batch with the location display filter applied.
func resultView(batch core.BatchResult, shown []string) *templates.ResultView {
	view := &templates.ResultView{
		HasMerged: batch.HasMerged,
		Merged:    core.FilterLocations(batch.Merged, shown),
		Shown:     shown,
	}

	locations := make(map[string]struct{})
	for i, f := range batch.Files {
		for _, r := range f.Table {
			locations[r.LocationName] = struct{}{}
		}

		fv := templates.FileResultView{
			Target:   strconv.Itoa(i),
			Name:     f.Name,
			Complete: f.Complete,
			Table:    core.FilterLocations(f.Table, shown),
			Error:    userMessage(f.Err),
		}
		for _, w := range f.Warnings {
			fv.Warnings = append(fv.Warnings, w.String())
		}
		view.Files = append(view.Files, fv)
	}

	for l := range locations {
		view.Locations = append(view.Locations, l)
	}
	sort.Strings(view.Locations)

	if len(shown) > 0 {
		view.ExportQuery = url.Values{fieldShowLocations: shown}.Encode()
	}
	return view
}
