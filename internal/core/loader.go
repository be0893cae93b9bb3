package core

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Loader failure causes. A *LoadError always unwraps to one of these.
var (
	ErrEmptyFile            = errors.New("empty file")
	ErrMissingColumns       = errors.New("missing required columns")
	ErrMalformedCSV         = errors.New("invalid csv")
	ErrMalformedSpreadsheet = errors.New("invalid spreadsheet")
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrFileTooLarge         = errors.New("file too large")
)

// Host-side failures around loading.
var (
	// ErrNoFile is returned when an upload request carries no file.
	ErrNoFile = errors.New("no file provided")
	// ErrFileNotFound is returned when a file id is not part of the session.
	ErrFileNotFound = errors.New("file not found")
)

// LoadError reports why one file could not be turned into a Dataset.
// It is reported per file; other files in the same batch are unaffected.
type LoadError struct {
	FileName string
	Format   Format
	Reason   string
	Err      error
}

func (e *LoadError) Error() string {
	if e.FileName == "" {
		return "load: " + e.Reason
	}
	return fmt.Sprintf("load %q: %s", e.FileName, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(name string, format Format, err error) *LoadError {
	return &LoadError{
		FileName: name,
		Format:   format,
		Reason:   err.Error(),
		Err:      err,
	}
}

// Load parses the bytes of one uploaded file into a Dataset.
//
// The header row is located by the required column names; extra columns are
// ignored and blank rows skipped. Any failure is returned as a *LoadError.
func Load(name string, data []byte, format Format) (*Dataset, error) {
	if len(data) == 0 {
		return nil, newLoadError(name, format, ErrEmptyFile)
	}

	if format == FormatSpreadsheet && isLegacyWorkbook(data) {
		return nil, newLoadError(name, format,
			fmt.Errorf("%w: legacy .xls workbooks cannot be read, save the file as .xlsx or .csv", ErrUnsupportedFormat))
	}

	parse, ok := ParserFor(format)
	if !ok {
		return nil, newLoadError(name, format, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}

	records, err := parse(data)
	if err != nil {
		return nil, newLoadError(name, format, err)
	}
	if len(records) == 0 {
		return nil, newLoadError(name, format, ErrEmptyFile)
	}

	headerPos, headerIdx, err := findHeader(records, RequiredColumns)
	if err != nil {
		return nil, newLoadError(name, format, err)
	}

	rows := buildRows(records[headerPos+1:], headerIdx)
	if len(rows) == 0 {
		return nil, newLoadError(name, format, fmt.Errorf("%w: no data rows after header", ErrEmptyFile))
	}

	return newDataset(name, format, rows, xxhash.Sum64(data)), nil
}

// buildRows converts data records into Rows, skipping blank records.
// Short records yield empty values for the missing cells.
func buildRows(records [][]string, idx HeaderIndex) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		if isEmptyRow(record) {
			continue
		}
		rows = append(rows, Row{
			Date:         NormalizeDate(idx.cell(record, ColLocalDate)),
			LocationName: idx.cell(record, ColLocationName),
			LocationType: idx.cell(record, ColLocationType),
			NetworkID:    idx.cell(record, ColSSID),
			UserID:       idx.cell(record, ColUserName),
		})
	}
	return rows
}
