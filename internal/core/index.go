package core

import "sort"

// Dimensions holds the filter choices offered for one dataset.
type Dimensions struct {
	Dates               []string `json:"dates"`
	Locations           []string `json:"locations"`
	LocationTypes       []string `json:"locationTypes"`
	SSIDs               []string `json:"ssids"`
	DefaultLocationType string   `json:"defaultLocationType"`
}

func (d Dimensions) clone() Dimensions {
	return Dimensions{
		Dates:               append([]string(nil), d.Dates...),
		Locations:           append([]string(nil), d.Locations...),
		LocationTypes:       append([]string(nil), d.LocationTypes...),
		SSIDs:               append([]string(nil), d.SSIDs...),
		DefaultLocationType: d.DefaultLocationType,
	}
}

// DistinctValues returns the sorted, duplicate-free values of column.
// Empty values are skipped. An unknown column yields an empty slice.
func DistinctValues(ds *Dataset, column string) []string {
	if ds == nil {
		return []string{}
	}
	if _, ok := (Row{}).Value(column); !ok {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range ds.rows {
		v, _ := r.Value(column)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DefaultLocationType picks the initial location type from the indexed
// choices: "network" when present, otherwise the first value in sorted
// order, or "" when there are none.
func DefaultLocationType(types []string) string {
	for _, t := range types {
		if t == DefaultLocationTypeValue {
			return t
		}
	}
	if len(types) > 0 {
		sorted := append([]string(nil), types...)
		sort.Strings(sorted)
		return sorted[0]
	}
	return ""
}
