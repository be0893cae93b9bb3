package core

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Download base names for exported tables.
const (
	ResultsBaseName       = "results"
	MergedResultsBaseName = "merged_results"
)

// ExportSheetName is the single sheet of an exported workbook.
const ExportSheetName = "Results"

// ExportFileName returns the download name for a table in the given format.
func ExportFileName(merged bool, format Format) string {
	base := ResultsBaseName
	if merged {
		base = MergedResultsBaseName
	}
	return base + format.Extension()
}

// Export writes table to w in the given format. Unknown formats write CSV.
func Export(w io.Writer, table ResultTable, format Format) error {
	if format == FormatSpreadsheet {
		return WriteXLSX(w, table)
	}
	return WriteCSV(w, table)
}

// WriteCSV writes table as UTF-8 comma-delimited text with a header row.
func WriteCSV(w io.Writer, table ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes table as a single-sheet workbook with a header row.
// Counts are stored as numbers.
func WriteXLSX(w io.Writer, table ResultTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	header := make([]interface{}, len(ResultColumns))
	for i, c := range ResultColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		row := []interface{}{r.Date, r.LocationName, r.DistinctCount}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
