package core

// validation.go checks uploaded headers against the fixed column set.
//
// Validation happens before any row is read:
//  1. Header search: the first row (within MaxHeaderSearchRows) containing
//     every required column is taken as the header
//  2. Missing columns: when no row qualifies, the error names what the first
//     non-empty row lacks so users can fix their export

import (
	"fmt"
	"strings"
)

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// ValidateHeaders checks that every required column exists in headers.
// Matching is case-sensitive after cell cleanup. Returns the header index,
// or an error wrapping ErrMissingColumns that lists the missing names.
func ValidateHeaders(headers []string, required []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	missing := missingColumns(idx, required)

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return idx, nil
}

func missingColumns(idx HeaderIndex, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// findHeader returns the position of the header record and its index.
// When no record within MaxHeaderSearchRows has every required column, the
// error describes the first non-empty record.
func findHeader(records [][]string, required []string) (int, HeaderIndex, error) {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	firstNonEmpty := -1
	for i := 0; i < maxRows; i++ {
		if isEmptyRow(records[i]) {
			continue
		}
		if firstNonEmpty < 0 {
			firstNonEmpty = i
		}
		if idx, err := ValidateHeaders(records[i], required); err == nil {
			return i, idx, nil
		}
	}

	if firstNonEmpty < 0 {
		return -1, nil, ErrEmptyFile
	}

	_, err := ValidateHeaders(records[firstNonEmpty], required)
	return -1, nil, err
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
