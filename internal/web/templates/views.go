package templates

import "github.com/JonMunkholm/usercount/internal/core"

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Files  []FileView
	Common CommonView
	Result *ResultView
	Error  *core.UserMessage

	// Accept is the file input's accept attribute.
	Accept   string
	MaxFiles int
}

// FileView is one uploaded file with its choice lists and current settings.
type FileView struct {
	ID       string
	Name     string
	Size     int64
	Rows     int
	Error    *core.UserMessage
	Dims     core.Dimensions
	Settings core.FileSettings
}

// Loaded reports whether the file has data to choose from.
func (f FileView) Loaded() bool {
	return f.Error == nil
}

// LocationType is the type shown as selected: the chosen one or the default.
func (f FileView) LocationType() string {
	if f.Settings.LocationType != "" {
		return f.Settings.LocationType
	}
	return f.Dims.DefaultLocationType
}

// CommonView is the "same filter for all files" option.
type CommonView struct {
	// Available is false until a file has loaded.
	Available bool
	Enabled   bool
	Choices   core.Dimensions
	Filter    core.CommonFilter
}

// ResultView is the latest recompute as rendered.
type ResultView struct {
	Files     []FileResultView
	Merged    core.ResultTable
	HasMerged bool

	// Locations are the choices of the display filter; Shown is its value.
	Locations []string
	Shown     []string

	// ExportQuery is appended to export links so downloads match the page.
	ExportQuery string
}

// FileResultView is one file's table or the reason it has none.
type FileResultView struct {
	Target   string
	Name     string
	Complete bool
	Table    core.ResultTable
	Warnings []string
	Error    *core.UserMessage
}
