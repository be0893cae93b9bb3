package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// parseCSVRecords reads comma-delimited text. The stream is decoded first
// (BOM removed, invalid UTF-8 replaced); quoting is lenient and rows may
// have differing field counts.
func parseCSVRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(WrapForDecoding(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	return records, nil
}
