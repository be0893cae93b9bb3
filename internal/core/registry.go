package core

import (
	"fmt"
	"sort"
	"sync"
)

// Parser turns the raw bytes of one file into string records.
// Records may be ragged; the loader handles header search and short rows.
type Parser func(data []byte) ([][]string, error)

var (
	parsers   = make(map[Format]Parser)
	parsersMu sync.RWMutex
)

func init() {
	RegisterParser(FormatCSV, parseCSVRecords)
	RegisterParser(FormatSpreadsheet, parseSpreadsheetRecords)
}

// RegisterParser adds a parser for a format.
// Panics if a parser for the same format is already registered.
func RegisterParser(format Format, p Parser) {
	parsersMu.Lock()
	defer parsersMu.Unlock()

	if _, exists := parsers[format]; exists {
		panic(fmt.Sprintf("parser already registered: %s", format))
	}
	parsers[format] = p
}

// ParserFor returns the parser registered for format.
// Returns false if none is registered.
func ParserFor(format Format) (Parser, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	p, ok := parsers[format]
	return p, ok
}

// Formats returns all formats with a registered parser, sorted.
func Formats() []Format {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	formats := make([]Format, 0, len(parsers))
	for f := range parsers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
