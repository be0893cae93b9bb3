package core

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimeCSV        = "text/csv"
	mimeXLSX       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLSM       = "application/vnd.ms-excel.sheet.macroEnabled.12"
	mimeLegacyXLS  = "application/vnd.ms-excel"
	mimeOLEStorage = "application/x-ole-storage"
	mimeZip        = "application/zip"
	mimeText       = "text/plain"
)

// AcceptedExtensions lists the upload extensions offered to users.
var AcceptedExtensions = []string{".csv", ".xls", ".xlsx", ".xlsm"}

// DetectFormat derives the format of an uploaded file.
//
// The file extension wins when it is known. Otherwise a declared content
// type of text/csv means CSV and any other declared type means spreadsheet.
// With neither, the content is sniffed.
func DetectFormat(fileName, contentType string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm", ".xls":
		return FormatSpreadsheet
	}

	if ct := strings.TrimSpace(strings.ToLower(contentType)); ct != "" && ct != "application/octet-stream" {
		if strings.HasPrefix(ct, mimeCSV) {
			return FormatCSV
		}
		return FormatSpreadsheet
	}

	return sniffFormat(data)
}

// sniffFormat inspects the leading bytes of data.
func sniffFormat(data []byte) Format {
	if len(data) == 0 {
		return FormatUnknown
	}

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeXLSX), m.Is(mimeXLSM), m.Is(mimeZip):
			return FormatSpreadsheet
		case m.Is(mimeLegacyXLS), m.Is(mimeOLEStorage):
			return FormatSpreadsheet
		case m.Is(mimeCSV), m.Is(mimeText):
			return FormatCSV
		}
	}
	return FormatUnknown
}

// isLegacyWorkbook reports whether data is a BIFF (.xls) workbook, which the
// spreadsheet parser cannot read.
func isLegacyWorkbook(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	m := mimetype.Detect(data)
	return m.Is(mimeLegacyXLS) || m.Is(mimeOLEStorage)
}
