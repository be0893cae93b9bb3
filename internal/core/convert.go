package core

// convert.go normalizes raw cell text from uploaded logs.
//
// Occupancy exports arrive from different tools with different habits:
//   - Dates as 2024-03-01, 3/1/2024 (month first), 01.03.2024 (day first)
//     or full timestamps
//   - Excel formula wrappers (="value") and quoting around dates and headers
//   - Stray whitespace
//
// Dates and header names are fully cleaned. Identifier cells (location, type,
// SSID, user) are only trimmed: 'alice' and alice are different users.

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jackc/pgx/v5/pgtype"
)

// DateLayout is the canonical form of a normalized Local Date.
const DateLayout = "2006-01-02"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "2.1.06", "02.01.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "2.1.2006", "02.01.2006",
		"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
	}
)

// ToPgDate parses a date cell using the known export layouts.
// Returns an invalid pgtype.Date for empty or unrecognized input.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	// Timestamps ("2024-03-01 00:00:00", RFC3339) from spreadsheet exports.
	if hasDayPart(s) {
		if t, err := dateparse.ParseAny(s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// hasDayPart reports whether s can name a single day: three numeric groups,
// or two next to a month name. "2024", "2024-03" and "Mar 2024" cannot.
func hasDayPart(s string) bool {
	groups, letters, inDigits := 0, false, false
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		if isDigit && !inDigits {
			groups++
		}
		inDigits = isDigit
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters = true
		}
	}
	return groups >= 3 || (groups == 2 && letters)
}


// NormalizeDate returns the canonical YYYY-MM-DD form of a date cell.
// Cells that do not parse as a date are returned cleaned but otherwise unchanged,
// so they still group and filter by exact text.
func NormalizeDate(s string) string {
	s = CleanCell(s)
	d := ToPgDate(s)
	if !d.Valid {
		return s
	}
	return d.Time.Format(DateLayout)
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// HeaderIndex maps exact column names to their position in a record.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header record.
// Names are cleaned but keep their case; the first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := CleanCell(h)
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// cell returns the trimmed value of column name in record, or "" when the
// record is too short to contain it. Quotes and formula wrappers are kept.
func (h HeaderIndex) cell(record []string, name string) string {
	pos, ok := h[name]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
