package web

import (
	"net/url"
	"strings"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/session"
)

// Dashboard form field names. Per-file fields are suffixed with the file id.
const (
	fieldAllDates        = "alldates-"
	fieldDates           = "dates-"
	fieldLocations       = "locations-"
	fieldSSIDs           = "ssids-"
	fieldLocationType    = "type-"
	fieldCommon          = "common"
	fieldCommonLocations = "common-locations"
	fieldCommonSSIDs     = "common-ssids"
	fieldShowLocations   = "locations"
)

// commonFromForm returns the common filter, or nil when it is switched off.
func commonFromForm(form url.Values) *core.CommonFilter {
	if form.Get(fieldCommon) != "on" {
		return nil
	}
	return &core.CommonFilter{
		Locations: formList(form, fieldCommonLocations),
		SSIDs:     formList(form, fieldCommonSSIDs),
	}
}

// settingsFromForm reads one file's settings. With a common filter the
// per-file location and SSID lists are not shown, so the stored ones stay.
func settingsFromForm(form url.Values, f *session.File, common bool) core.FileSettings {
	settings := f.Settings
	settings.AllDates = form.Get(fieldAllDates+f.ID) == "on"
	settings.Dates = formList(form, fieldDates+f.ID)
	if !common {
		settings.Locations = formList(form, fieldLocations+f.ID)
		settings.SSIDs = formList(form, fieldSSIDs+f.ID)
	}
	settings.LocationType = strings.TrimSpace(form.Get(fieldLocationType + f.ID))
	return settings
}

// formList returns the non-empty values of a multi-value field in order.
func formList(form url.Values, name string) []string {
	var out []string
	for _, v := range form[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
