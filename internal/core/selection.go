package core

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Selection is the filter driving one aggregation.
// Dates and LocationNames are iterated in the order given; NetworkIDs is a set.
type Selection struct {
	Dates         []string `json:"dates"`
	LocationNames []string `json:"locationNames"`
	NetworkIDs    []string `json:"networkIds"`
	LocationType  string   `json:"locationType"`
}

// Complete reports whether the selection has at least one date, location and
// SSID. An incomplete selection means "nothing selected yet"; Aggregate returns
// an empty table for it without doing any work.
func (s Selection) Complete() bool {
	return len(s.Dates) > 0 && len(s.LocationNames) > 0 && len(s.NetworkIDs) > 0
}

// Key returns a hash identifying the selection for memoization.
// Order matters for dates and locations since it decides result order.
func (s Selection) Key() uint64 {
	h := xxhash.New()
	writeList := func(tag string, values []string) {
		_, _ = h.WriteString(tag)
		for _, v := range values {
			_, _ = h.WriteString(v)
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{1})
	}
	writeList("d", s.Dates)
	writeList("l", s.LocationNames)
	writeList("n", sortedUnique(s.NetworkIDs))
	_, _ = h.WriteString("t" + s.LocationType)
	return h.Sum64()
}

// FileSettings are the per-file choices made in a host.
type FileSettings struct {
	AllDates     bool     `json:"allDates"`
	Dates        []string `json:"dates"`
	Locations    []string `json:"locations"`
	SSIDs        []string `json:"ssids"`
	LocationType string   `json:"locationType"`
}

// DefaultFileSettings selects every date and nothing else.
func DefaultFileSettings() FileSettings {
	return FileSettings{AllDates: true}
}

// CommonFilter applies the same locations and SSIDs to every file in a batch.
type CommonFilter struct {
	Locations []string `json:"locations"`
	SSIDs     []string `json:"ssids"`
}

// ResolveSelection turns host settings into a Selection for one dataset.
//
// AllDates selects every date of the dataset in ascending order; explicit
// dates are normalized like loaded dates. A non-nil common filter replaces
// the file's own locations and SSIDs. An empty location type falls back to
// the dataset's default.
func ResolveSelection(ds *Dataset, settings FileSettings, common *CommonFilter) Selection {
	dims := ds.Dimensions()

	sel := Selection{LocationType: settings.LocationType}
	if sel.LocationType == "" {
		sel.LocationType = dims.DefaultLocationType
	}

	if settings.AllDates {
		sel.Dates = dims.Dates
	} else {
		sel.Dates = make([]string, 0, len(settings.Dates))
		for _, d := range settings.Dates {
			sel.Dates = append(sel.Dates, NormalizeDate(d))
		}
	}

	if common != nil {
		sel.LocationNames = append([]string(nil), common.Locations...)
		sel.NetworkIDs = append([]string(nil), common.SSIDs...)
	} else {
		sel.LocationNames = append([]string(nil), settings.Locations...)
		sel.NetworkIDs = append([]string(nil), settings.SSIDs...)
	}

	return sel
}

// UnknownValue is a selected value the dataset does not contain.
type UnknownValue struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (u UnknownValue) String() string {
	return fmt.Sprintf("%s %q not found", u.Column, u.Value)
}

// UnknownValues lists the selected values absent from the dataset's
// dimensions. Such values are not errors: they simply match no rows.
func UnknownValues(ds *Dataset, sel Selection) []UnknownValue {
	dims := ds.Dimensions()

	var out []UnknownValue
	check := func(column string, known, selected []string) {
		set := make(map[string]struct{}, len(known))
		for _, v := range known {
			set[v] = struct{}{}
		}
		for _, v := range sortedUnique(selected) {
			if _, ok := set[v]; !ok {
				out = append(out, UnknownValue{Column: column, Value: v})
			}
		}
	}

	check(ColLocalDate, dims.Dates, sel.Dates)
	check(ColLocationName, dims.Locations, sel.LocationNames)
	check(ColSSID, dims.SSIDs, sel.NetworkIDs)
	if sel.LocationType != "" {
		check(ColLocationType, dims.LocationTypes, []string{sel.LocationType})
	}
	return out
}
