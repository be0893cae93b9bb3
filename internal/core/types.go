// Package core provides the occupancy analysis logic: loading logs, indexing
// filter choices, counting distinct users and merging per-file results.
// This package has no UI dependencies and can be used by any frontend.
package core

import "strconv"

// Column names expected in every uploaded occupancy log.
// Matching is case-sensitive; extra columns are ignored.
const (
	ColLocalDate    = "Local Date"
	ColLocationName = "Location Name"
	ColLocationType = "Location Type"
	ColSSID         = "SSID"
	ColUserName     = "User Name"

	// ColDistinctCount is the count column of an exported ResultTable.
	ColDistinctCount = "Distinct Count"
)

// RequiredColumns lists the columns a log must contain, in canonical order.
var RequiredColumns = []string{
	ColLocalDate,
	ColLocationName,
	ColLocationType,
	ColSSID,
	ColUserName,
}

// ResultColumns is the header of every exported ResultTable.
var ResultColumns = []string{ColLocalDate, ColLocationName, ColDistinctCount}

// DefaultLocationTypeValue is preferred as the initial location type when present.
const DefaultLocationTypeValue = "network"

// Format identifies the tabular encoding of an uploaded file.
type Format string

const (
	FormatUnknown     Format = ""
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "xlsx"
)

// Extension returns the file extension used when exporting in this format.
func (f Format) Extension() string {
	if f == FormatSpreadsheet {
		return ".xlsx"
	}
	return ".csv"
}

// ContentType returns the MIME type used when serving an export in this format.
func (f Format) ContentType() string {
	if f == FormatSpreadsheet {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Row is one observed session from an occupancy log.
type Row struct {
	Date         string // YYYY-MM-DD when the cell parses as a date, else the cleaned cell text
	LocationName string
	LocationType string
	NetworkID    string // SSID
	UserID       string // User Name
}

// Value returns the canonical string form of the named column.
// Unknown column names yield "" and ok=false.
func (r Row) Value(column string) (string, bool) {
	switch column {
	case ColLocalDate:
		return r.Date, true
	case ColLocationName:
		return r.LocationName, true
	case ColLocationType:
		return r.LocationType, true
	case ColSSID:
		return r.NetworkID, true
	case ColUserName:
		return r.UserID, true
	default:
		return "", false
	}
}

// ResultRow is the distinct user count for one (date, location) pair.
type ResultRow struct {
	Date          string `json:"localDate"`
	LocationName  string `json:"locationName"`
	DistinctCount int    `json:"distinctCount"`
}

// ResultTable is an ordered sequence of ResultRows.
type ResultTable []ResultRow

// Records returns the table as string records, header first.
func (t ResultTable) Records() [][]string {
	records := make([][]string, 0, len(t)+1)
	records = append(records, append([]string(nil), ResultColumns...))
	for _, r := range t {
		records = append(records, []string{r.Date, r.LocationName, strconv.Itoa(r.DistinctCount)})
	}
	return records
}

// Locations returns the distinct location names in first-seen order.
func (t ResultTable) Locations() []string {
	seen := make(map[string]struct{}, len(t))
	var out []string
	for _, r := range t {
		if _, ok := seen[r.LocationName]; ok {
			continue
		}
		seen[r.LocationName] = struct{}{}
		out = append(out, r.LocationName)
	}
	return out
}
